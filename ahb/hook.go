package ahb

import (
	"log"

	"github.com/sarchlab/ahbsim/sim"
)

// Hook positions used by the components that drive the bus.
var (
	// HookPosAddrPresented triggers when an address phase is presented.
	HookPosAddrPresented = &sim.HookPos{Name: "AddrPresented"}

	// HookPosAddrDenied triggers when an address phase presented with
	// HREADY high is not accepted.
	HookPosAddrDenied = &sim.HookPos{Name: "AddrDenied"}

	// HookPosAddrAccepted triggers when an address phase moves into the data
	// phase.
	HookPosAddrAccepted = &sim.HookPos{Name: "AddrAccepted"}

	// HookPosTransferDone triggers when a data phase ends with Success.
	HookPosTransferDone = &sim.HookPos{Name: "TransferDone"}

	// HookPosTransferAborted triggers when a data phase ends with Error or
	// when an address phase is cancelled.
	HookPosTransferAborted = &sim.HookPos{Name: "TransferAborted"}

	// HookPosStall triggers when nothing advanced in a cycle.
	HookPosStall = &sim.HookPos{Name: "Stall"}
)

// TransferEvent is the Item of the hooks above.
type TransferEvent struct {
	ID    string
	Cycle uint64
	Meta  TransferMeta
	Data  Data
}

// TransferLogger is a hook that prints bus activity.
type TransferLogger struct {
	sim.LogHookBase
}

// NewTransferLogger creates a TransferLogger that writes into the logger.
func NewTransferLogger(logger *log.Logger) *TransferLogger {
	h := new(TransferLogger)
	h.Logger = logger

	return h
}

// Func writes the transfer information into the logger.
func (h *TransferLogger) Func(ctx sim.HookCtx) {
	evt, ok := ctx.Item.(TransferEvent)
	if !ok {
		return
	}

	where := ""
	if named, ok := ctx.Domain.(sim.Named); ok {
		where = named.Name()
	}

	switch ctx.Pos {
	case HookPosTransferDone:
		h.Logger.Printf("%d, %s, %s, %s, data=0x%08x",
			evt.Cycle, where, ctx.Pos.Name, evt.Meta, uint32(evt.Data))
	default:
		h.Logger.Printf("%d, %s, %s, %s",
			evt.Cycle, where, ctx.Pos.Name, evt.Meta)
	}
}
