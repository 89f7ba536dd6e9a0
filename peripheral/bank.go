package peripheral

import (
	"errors"
	"fmt"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"
)

// ErrNoRegister is the error of transfers to a hole in a register bank.
var ErrNoRegister = errors.New("no register at address")

// A RegisterBank is a peripheral that answers word transfers to its
// registers after a fixed number of wait states. Narrower transfers reach it
// through an aligned handler, see Handler.
//
// Some peripherals take one more cycle when the transfer right before
// touched the same register. BackToBackPenalty adds that many wait states in
// that case.
type RegisterBank struct {
	name       string
	clock      sim.CycleTeller
	base       uint32
	size       uint32
	regs       map[uint32]*Register
	readWaits  int
	writeWaits int
	penalty    int

	lastAddr  uint32
	nextIssue uint64
	hasLast   bool
	aligned   *slave.AlignedHandler
}

// Name returns the name of the bank.
func (b *RegisterBank) Name() string {
	return b.name
}

// Range returns the addresses the bank covers.
func (b *RegisterBank) Range() ahb.AddressRange {
	return ahb.AddressRange{Low: b.base, High: uint64(b.base) + uint64(b.size)}
}

// Handler returns the handler to serve the bank with. It accepts byte and
// halfword transfers as well.
func (b *RegisterBank) Handler() slave.FakingHandler {
	return b.aligned
}

// Register returns the register at an offset from the base.
func (b *RegisterBank) Register(offset uint32) (*Register, bool) {
	r, found := b.regs[offset]
	return r, found
}

// Reset restores the reset value of every register.
func (b *RegisterBank) Reset() {
	for _, r := range b.regs {
		r.ResetValue()
	}
}

func (b *RegisterBank) lookup(meta ahb.TransferMeta) (*Register, error) {
	if meta.Size != ahb.SizeWord || !meta.IsAligned() {
		return nil, slave.ErrUnaligned
	}

	if !b.Range().Covers(meta) {
		return nil, fmt.Errorf("%w 0x%08x", ErrNoRegister, meta.Addr)
	}

	r, found := b.regs[meta.Addr-b.base]
	if !found {
		return nil, fmt.Errorf("%w 0x%08x", ErrNoRegister, meta.Addr)
	}

	return r, nil
}

func (b *RegisterBank) waits(meta ahb.TransferMeta, base int) int {
	now := b.clock.CurrentCycle()
	n := base

	if b.hasLast && b.lastAddr == meta.Addr && now == b.nextIssue {
		n += b.penalty
	}

	b.hasLast = true
	b.lastAddr = meta.Addr
	b.nextIssue = now + uint64(n) + 1

	return n
}

// PreRead returns the read wait states.
func (b *RegisterBank) PreRead(meta ahb.TransferMeta) (int, error) {
	if _, err := b.lookup(meta); err != nil {
		return 0, err
	}

	return b.waits(meta, b.readWaits), nil
}

// Read returns the value of the register as the bus sees it.
func (b *RegisterBank) Read(meta ahb.TransferMeta) ahb.Data {
	r, _ := b.lookup(meta)
	return ahb.Data(r.BusRead())
}

// RawRead returns the stored value of the register, write-only bits
// included. Narrow writes are merged into it.
func (b *RegisterBank) RawRead(meta ahb.TransferMeta) ahb.Data {
	r, _ := b.lookup(meta)
	return ahb.Data(r.Value())
}

// PreWrite returns the write wait states.
func (b *RegisterBank) PreWrite(meta ahb.TransferMeta) (int, error) {
	if _, err := b.lookup(meta); err != nil {
		return 0, err
	}

	return b.waits(meta, b.writeWaits), nil
}

// Write applies a bus write to the register.
func (b *RegisterBank) Write(meta ahb.TransferMeta, data ahb.Data) {
	r, _ := b.lookup(meta)

	old := r.BusWrite(uint32(data))
	if r.OnWrite != nil && old != r.value {
		r.OnWrite(r, old)
	}
}
