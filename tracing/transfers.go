package tracing

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// Task kinds and steps emitted for bus transfers.
const (
	KindRead  = "read"
	KindWrite = "write"

	StepDenied   = "denied"
	StepAccepted = "accepted"
	StepStall    = "stall"
	StepError    = "error"
)

// TraceTransfers makes a bus master report its transfers as tasks. A task
// starts when the address phase of a transfer is first presented and ends
// when its data phase completes or the transfer is aborted. Tracers attached
// with CollectTrace to the same domain receive the tasks.
func TraceTransfers(domain NamedHookable) {
	domain.AcceptHook(&transferTasks{
		domain:  domain,
		started: make(map[string]bool),
	})
}

type transferTasks struct {
	domain  NamedHookable
	started map[string]bool
	order   []string
}

func (h *transferTasks) Func(ctx sim.HookCtx) {
	evt, ok := ctx.Item.(ahb.TransferEvent)
	if !ok {
		return
	}

	switch ctx.Pos {
	case ahb.HookPosAddrPresented:
		h.start(evt, ctx.Detail)
	case ahb.HookPosAddrDenied:
		h.step(evt.ID, StepDenied)
	case ahb.HookPosAddrAccepted:
		h.step(evt.ID, StepAccepted)
	case ahb.HookPosTransferDone:
		h.end(evt.ID)
	case ahb.HookPosTransferAborted:
		h.step(evt.ID, StepError)
		h.end(evt.ID)
	case ahb.HookPosStall:
		for _, id := range h.order {
			AddTaskStep(id, h.domain, StepStall)
		}
	}
}

func (h *transferTasks) start(evt ahb.TransferEvent, detail any) {
	if evt.ID == "" || h.started[evt.ID] {
		return
	}

	kind := KindRead
	if evt.Meta.IsWrite() {
		kind = KindWrite
	}

	h.started[evt.ID] = true
	h.order = append(h.order, evt.ID)

	StartTask(evt.ID, "", h.domain, kind, evt.Meta.String(), detail)
}

func (h *transferTasks) step(id, what string) {
	if !h.started[id] {
		return
	}

	AddTaskStep(id, h.domain, what)
}

func (h *transferTasks) end(id string) {
	if !h.started[id] {
		return
	}

	delete(h.started, id)

	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}

	EndTask(id, h.domain)
}
