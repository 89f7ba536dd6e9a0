package slave

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

type fakingDataPhase struct {
	master   ahb.Master
	meta     ahb.TransferMeta
	idle     bool
	waitLeft int
	err      error
}

// FakingDriver serves one FakingHandler. It keeps the remaining wait states
// of the transfer in the data phase and answers Pending until they run out.
type FakingDriver struct {
	*sim.ComponentBase

	clock     sim.CycleTeller
	handler   FakingHandler
	adjuster  WaitStateAdjuster
	writeMode WriteMode

	cur *fakingDataPhase

	next          *fakingDataPhase
	addrSeen      bool
	driven        bool
	resp          ahb.DataResponse
	deferredWrite *ahb.DataPhase
}

// Handler returns the handler that the driver serves.
func (s *FakingDriver) Handler() FakingHandler {
	return s.handler
}

// InDataPhase tells if a transfer is in the data phase.
func (s *FakingDriver) InDataPhase() bool {
	return s.cur != nil
}

// WaitStatesLeft returns how many more cycles the current data phase will
// answer Pending.
func (s *FakingDriver) WaitStatesLeft() int {
	if s.cur == nil {
		return 0
	}

	return s.cur.waitLeft
}

// committedResponse returns the response of the current data phase, as
// determined by the state committed at the previous edge.
func (s *FakingDriver) committedResponse() ahb.Response {
	switch {
	case s.cur == nil:
		return ahb.Success
	case s.cur.waitLeft > 0:
		return ahb.Pending
	case s.cur.err != nil:
		return ahb.Error
	default:
		return ahb.Success
	}
}

// AddrPhase accepts an address phase if both the master and the slave are
// ready.
func (s *FakingDriver) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	sim.MustHold(!s.addrSeen, s.clock, s,
		"two address phases in one cycle")
	s.addrSeen = true

	granted := a.Ready && s.committedResponse().Ready()

	if granted {
		s.next = s.accept(m, a)
	}

	m.AddrPhaseGranted(s, granted)
}

func (s *FakingDriver) accept(m ahb.Master, a ahb.AddrPhase) *fakingDataPhase {
	dp := &fakingDataPhase{master: m, meta: a.Meta}

	if !a.Type.IsActive() {
		dp.idle = true
		return dp
	}

	if a.Meta.IsWrite() {
		dp.waitLeft, dp.err = s.handler.PreWrite(a.Meta)
	} else {
		dp.waitLeft, dp.err = s.handler.PreRead(a.Meta)
	}

	if dp.waitLeft < 0 {
		dp.waitLeft = 0
	}

	return dp
}

// DataPhase answers the data phase of the transfer accepted earlier.
func (s *FakingDriver) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	if s.cur == nil {
		sim.Violate(s.clock, s, "data phase %s without an address phase", d.Meta)
	}

	sim.MustHold(m == s.cur.master, s.clock, s,
		"data phase driven by a master that does not own it")
	sim.MustHold(d.Meta == s.cur.meta, s.clock, s,
		"data phase %s does not match address phase %s", d.Meta, s.cur.meta)

	if s.driven {
		return s.resp
	}

	s.driven = true
	s.resp = ahb.Respond(s.committedResponse(), 0)

	if s.resp.Resp != ahb.Success || s.cur.idle {
		return s.resp
	}

	switch {
	case !d.Meta.IsWrite():
		s.resp.Data = s.handler.Read(d.Meta)
	case s.writeMode == WriteCombinatorial:
		s.handler.Write(d.Meta, d.WriteData)
	default:
		dp := d
		s.deferredWrite = &dp
	}

	return s.resp
}

// Tick does nothing. The driver reacts to the calls of its master.
func (s *FakingDriver) Tick() {}

// Tock counts down the wait states and commits the accepted address phase.
func (s *FakingDriver) Tock() {
	if s.cur != nil {
		sim.MustHold(s.driven, s.clock, s,
			"data phase of %s was not driven", s.cur.meta)

		if s.resp.Resp.Ready() {
			if s.deferredWrite != nil {
				s.handler.Write(s.deferredWrite.Meta, s.deferredWrite.WriteData)
			}

			s.cur = nil
		} else {
			s.countDown()
		}
	}

	if s.next != nil {
		sim.MustHold(s.cur == nil, s.clock, s,
			"address phase accepted while the data phase is pending")
		s.cur = s.next
	}

	s.next = nil
	s.addrSeen = false
	s.driven = false
	s.resp = ahb.DataResponse{}
	s.deferredWrite = nil
}

func (s *FakingDriver) countDown() {
	s.cur.waitLeft--

	if s.adjuster == nil {
		return
	}

	adjusted := s.adjuster.AdjustWaitStates(s.cur.meta, s.cur.waitLeft)
	sim.MustHold(adjusted >= s.cur.waitLeft, s.clock, s,
		"wait states of %s shrank from %d to %d",
		s.cur.meta, s.cur.waitLeft, adjusted)

	s.cur.waitLeft = adjusted
}

// AssertState checks that the wait state counter is sane.
func (s *FakingDriver) AssertState() {
	if s.cur != nil {
		sim.MustHold(s.cur.waitLeft >= 0, s.clock, s,
			"negative wait states for %s", s.cur.meta)
	}
}

// CanBeDisabledNow tells if the driver has no transfer in the data phase.
func (s *FakingDriver) CanBeDisabledNow() bool {
	return s.cur == nil
}

// MaxCyclesToSkip puts no limit. An idle driver can sleep for as long as its
// master does.
func (s *FakingDriver) MaxCyclesToSkip() uint64 {
	return sim.SkipUnbounded
}

// EmulateSkippedCycles does nothing, as an idle driver has no state that
// changes with time.
func (s *FakingDriver) EmulateSkippedCycles(n uint64) {}
