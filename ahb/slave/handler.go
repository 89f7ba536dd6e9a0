// Package slave turns address and data phases into calls on peripheral
// handlers, inserting wait states on the way.
package slave

import (
	"errors"

	"github.com/sarchlab/ahbsim/ahb"
)

// ErrUnaligned is returned by handlers that cannot serve a transfer whose
// address is not a multiple of its size, or that is wider than the native
// width of the target.
var ErrUnaligned = errors.New("unaligned transfer")

// Handler is the simple slave contract. The driver polls the handler every
// cycle of the data phase until it stops answering Pending.
type Handler interface {
	// ReadData answers one cycle of a read data phase.
	ReadData(meta ahb.TransferMeta) (ahb.Response, ahb.Data)

	// PreWrite is called once, when the address phase of a write is
	// accepted. An Error answer makes the data phase fail without calling
	// WriteData.
	PreWrite(meta ahb.TransferMeta) ahb.Response

	// WriteData answers one cycle of a write data phase. It is polled with
	// postSuccess false. After it answered Success, it is called once more
	// with postSuccess true at the end of the cycle, to latch the value.
	WriteData(meta ahb.TransferMeta, data ahb.Data, postSuccess bool) ahb.Response
}

// FakingHandler is the contract used by most peripherals. PreRead and
// PreWrite are called once, when the address phase is accepted, and tell how
// many wait states to insert. Read and Write are called exactly once, after
// the wait states elapsed, and perform the effect.
type FakingHandler interface {
	PreRead(meta ahb.TransferMeta) (waitStates int, err error)
	Read(meta ahb.TransferMeta) ahb.Data
	PreWrite(meta ahb.TransferMeta) (waitStates int, err error)
	Write(meta ahb.TransferMeta, data ahb.Data)
}

// WaitStateAdjuster can be implemented by a FakingHandler whose wait states
// depend on what happens while a transfer waits. It is asked at the end of
// every waiting cycle and may only extend the remaining count.
type WaitStateAdjuster interface {
	AdjustWaitStates(meta ahb.TransferMeta, remaining int) int
}

// WriteMode tells when a write becomes visible to the handler.
type WriteMode int

// Write modes.
const (
	// WriteDeferred calls Write at the tock of the cycle the data phase
	// completes.
	WriteDeferred WriteMode = iota

	// WriteCombinatorial calls Write during the tick pass of the cycle the
	// data phase completes, so the effect is visible in the same cycle.
	WriteCombinatorial
)
