package buffers

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// HookPosWriteLost triggers when the slave answers a buffered write with a
// bus error. The master was told the write succeeded long ago, so the error
// can only be reported.
var HookPosWriteLost = &sim.HookPos{Name: "WriteLost"}

type postedWrite struct {
	meta ahb.TransferMeta
	data ahb.Data
}

// A WriteBuffer posts bufferable writes. It answers their data phase with
// Success at once, keeps the write in a queue and drains the queue toward
// the slave on its own. Other transfers pass through.
//
// Reads that overlap a posted write and non-bufferable writes wait until the
// queue drains. When a passthrough transfer took the bus in the last cycle
// and writes are waiting, the drain goes first.
type WriteBuffer struct {
	*port

	queue    sim.Buffer[postedWrite]
	captured ahb.Data

	draining    bool
	drainDriven bool
	drainResp   ahb.DataResponse
	starved     bool
}

// Len returns the number of posted writes that have not reached the slave.
func (w *WriteBuffer) Len() int {
	return w.queue.Size()
}

// IsEmpty tells if every posted write reached the slave.
func (w *WriteBuffer) IsEmpty() bool {
	return w.queue.Size() == 0 && w.data.kind != dataLocal
}

// Queue returns the queue of posted writes.
func (w *WriteBuffer) Queue() sim.BufferInfo {
	return w.queue
}

func (w *WriteBuffer) occupancy() int {
	n := w.queue.Size()
	if w.data.kind == dataLocal {
		n++
	}

	return n
}

// mustWait tells if the transfer would overtake a posted write.
func (w *WriteBuffer) mustWait(meta ahb.TransferMeta) bool {
	if meta.IsWrite() {
		return w.occupancy() > 0
	}

	if w.data.kind == dataLocal && w.data.meta.Overlaps(meta) {
		return true
	}

	for i := 0; i < w.queue.Size(); i++ {
		if w.queue.At(i).meta.Overlaps(meta) {
			return true
		}
	}

	return false
}

func posts(meta ahb.TransferMeta) bool {
	return meta.IsWrite() && meta.Prot.Has(ahb.ProtBufferable)
}

// AddrPhase posts bufferable writes and relays the other transfers when
// ordering allows.
func (w *WriteBuffer) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	w.bindUpstream(m)

	sim.MustHold(a.Type.IsActive(), w.clock, w,
		"%s address phase reached the write buffer", a.Type)

	switch {
	case !a.Ready:
		w.deny()
	case posts(a.Meta):
		if w.occupancy() >= w.queue.Capacity() {
			w.deny()
			return
		}

		w.answerUp(true, &dataSlot{kind: dataLocal, meta: a.Meta})
	case w.mustWait(a.Meta), w.draining, w.starved:
		w.deny()
	default:
		w.present(presentRelay, a,
			dataSlot{kind: dataForwarded, meta: a.Meta, down: a.Meta})
	}
}

// DataPhase captures the data of a posted write or relays the data phase of
// a passthrough transfer.
func (w *WriteBuffer) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	w.checkDataPhase(d)

	if w.data.kind == dataLocal {
		w.captured = d.WriteData
		return w.answerData(ahb.Respond(ahb.Success, 0))
	}

	return w.forward(d)
}

// Tick drives the drain.
func (w *WriteBuffer) Tick() {
	ready := true

	switch {
	case w.draining:
		head, _ := w.queue.Peek()
		w.drainResp = w.downstream.DataPhase(w, ahb.DataPhase{
			Meta:      head.meta,
			WriteData: head.data,
		})
		w.drainDriven = true
		ready = w.drainResp.Resp.Ready()
	case w.data.kind == dataForwarded:
		sim.MustHold(w.driven, w.clock, w,
			"the passthrough data phase was not driven before the drain")
		ready = w.resp.Resp.Ready()
	}

	if w.presented != presentNone || !ready {
		return
	}

	next := 0
	if w.draining {
		next = 1
	}

	if next < w.queue.Size() {
		w.present(presentOwn, ahb.NonSeq(w.queue.At(next).meta, true), dataSlot{})
	}
}

// Tock retires drained writes and queues the captured one.
func (w *WriteBuffer) Tock() {
	if w.draining {
		sim.MustHold(w.drainDriven, w.clock, w, "the drain was not driven")

		if w.drainResp.Resp.Ready() {
			head, _ := w.queue.Pop()
			w.draining = false

			if w.drainResp.Resp == ahb.Error {
				w.writeLost(head)
			}
		}
	}

	if w.presented == presentOwn && w.downGranted {
		w.draining = true
	}

	if w.data.kind == dataLocal && w.driven {
		w.queue.Push(postedWrite{meta: w.data.meta, data: w.captured})
	}

	w.starved = w.presented == presentRelay && w.queue.Size() > 0

	w.drainDriven = false
	w.drainResp = ahb.DataResponse{}
	w.commit()
}

func (w *WriteBuffer) writeLost(pw postedWrite) {
	log.Printf("%s: posted %s of 0x%08x failed", w.Name(), pw.meta, pw.data)

	if w.NumHooks() > 0 {
		w.InvokeHook(sim.HookCtx{
			Domain: w,
			Pos:    HookPosWriteLost,
			Item: ahb.TransferEvent{
				Cycle: w.clock.CurrentCycle(),
				Meta:  pw.meta,
				Data:  pw.data,
			},
		})
	}
}

// CanBeDisabledNow tells if the buffer is empty and no data phase is in
// flight.
func (w *WriteBuffer) CanBeDisabledNow() bool {
	return w.port.CanBeDisabledNow() && w.queue.Size() == 0 && !w.draining
}
