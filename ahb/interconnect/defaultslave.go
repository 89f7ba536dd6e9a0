package interconnect

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"
)

// notDecoded answers every transfer with a bus error.
type notDecoded struct{}

func (notDecoded) PreRead(meta ahb.TransferMeta) (int, error) {
	return 0, ErrNotDecoded
}

func (notDecoded) Read(meta ahb.TransferMeta) ahb.Data {
	return 0
}

func (notDecoded) PreWrite(meta ahb.TransferMeta) (int, error) {
	return 0, ErrNotDecoded
}

func (notDecoded) Write(meta ahb.TransferMeta, data ahb.Data) {}

func newDefaultSlave(name string, clock sim.CycleTeller) *slave.FakingDriver {
	return slave.MakeBuilder().
		WithClock(clock).
		BuildFaking(name, notDecoded{})
}
