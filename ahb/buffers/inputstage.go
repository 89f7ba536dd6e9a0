package buffers

import (
	"github.com/sarchlab/ahbsim/ahb"
)

// An InputStage accepts every address phase its master presents while it is
// free, so the master never sees a denial from the interconnect behind it.
// A transfer that the downstream side denies is held and presented again
// each cycle, while the data phase of the master is answered Pending.
//
// Idle and Busy address phases are terminated in the stage. They are
// accepted and their data phase is answered Success without reaching the
// slave.
type InputStage struct {
	*port
}

// IsHolding tells if a transfer waits for the downstream side.
func (s *InputStage) IsHolding() bool {
	return s.data.kind == dataHeld
}

// AddrPhase accepts the address phase if the stage is free.
func (s *InputStage) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	s.bindUpstream(m)

	if !a.Ready || s.data.kind == dataHeld {
		s.deny()
		return
	}

	if !a.Type.IsActive() {
		s.answerUp(true, &dataSlot{kind: dataLocal, meta: a.Meta, idle: true})
		return
	}

	s.answerUp(true, &dataSlot{kind: dataHeld, meta: a.Meta, down: a.Meta})
	s.present(presentOwn, a, dataSlot{})
}

// DataPhase relays the data phase once the slave accepted the transfer and
// answers Pending before that.
func (s *InputStage) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	s.checkDataPhase(d)

	switch s.data.kind {
	case dataHeld:
		return s.answerData(ahb.Respond(ahb.Pending, 0))
	case dataLocal:
		return s.answerData(ahb.Respond(ahb.Success, 0))
	default:
		return s.forward(d)
	}
}

// Tick presents the held transfer again.
func (s *InputStage) Tick() {
	if s.data.kind == dataHeld {
		s.present(presentOwn, ahb.NonSeq(s.data.meta, true), dataSlot{})
	}
}

// Tock commits the data slot.
func (s *InputStage) Tock() {
	s.commit()
}
