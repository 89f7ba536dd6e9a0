package master

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// Access is one entry of the script of a Scripted master.
type Access struct {
	Meta ahb.TransferMeta

	// Data is the value to write. It is ignored for reads.
	Data ahb.Data

	// Gap is the number of cycles between the request of the previous
	// access and the request of this one.
	Gap uint64
}

// Result records what happened to one Access.
type Result struct {
	Resp        ahb.Response
	Data        ahb.Data
	Completed   bool
	RequestedAt uint64
	AcceptedAt  uint64
	CompletedAt uint64
	Denials     int
}

// Scripted is a master that issues a fixed list of accesses in order, as
// fast as the bus lets it. It is used as a traffic generator.
type Scripted struct {
	*sim.ComponentBase

	clock  sim.CycleTeller
	driver *Driver

	script     []Access
	next       int
	results    []Result
	inFlight   int
	stalls     uint64
	onFinished func()
	finished   bool
}

// Driver returns the driver of the master, to be connected to a slave port.
func (s *Scripted) Driver() *Driver {
	return s.driver
}

// Results returns the results of the accesses, in script order.
func (s *Scripted) Results() []Result {
	return s.results
}

// Stalls returns the number of cycles in which nothing advanced.
func (s *Scripted) Stalls() uint64 {
	return s.stalls
}

// Done tells if every access completed.
func (s *Scripted) Done() bool {
	return s.next == len(s.script) && s.inFlight == 0
}

// Tick requests the next access if possible and drives the bus.
func (s *Scripted) Tick() {
	s.tryIssue()
	s.driver.Tick()
}

func (s *Scripted) tryIssue() {
	if s.next >= len(s.script) {
		return
	}

	now := s.clock.CurrentCycle()
	if now < s.dueCycle() {
		return
	}

	access := s.script[s.next]

	if _, ok := s.driver.TryRequest(access.Meta, s.next); !ok {
		return
	}

	s.results[s.next].RequestedAt = now
	s.next++
	s.inFlight++
}

// Tock commits the state of the driver.
func (s *Scripted) Tock() {
	s.driver.Tock()

	if s.Done() && !s.finished {
		s.finished = true
		if s.onFinished != nil {
			s.onFinished()
		}
	}
}

// AssertState checks the invariants of the driver.
func (s *Scripted) AssertState() {
	s.driver.AssertState()
}

// TransferDone records a successful access.
func (s *Scripted) TransferDone(t *Transfer, data ahb.Data) {
	s.record(t, ahb.Success, data)
}

// TransferAborted records a failed access.
func (s *Scripted) TransferAborted(t *Transfer) {
	s.record(t, ahb.Error, 0)
}

func (s *Scripted) record(t *Transfer, resp ahb.Response, data ahb.Data) {
	r := &s.results[t.Payload.(int)]
	r.Resp = resp
	r.Data = data
	r.Completed = true
	r.AcceptedAt = t.AcceptedAt
	r.CompletedAt = s.clock.CurrentCycle()
	r.Denials = t.Denials

	s.inFlight--
}

// TransfersWillStall counts stalls.
func (s *Scripted) TransfersWillStall() {
	s.stalls++
}

// WriteNeedsDataThisCycle supplies the write value from the script.
func (s *Scripted) WriteNeedsDataThisCycle(t *Transfer) ahb.Data {
	return s.script[t.Payload.(int)].Data
}

// CanBeDisabledNow tells if the master has nothing to do until its next
// access is due.
func (s *Scripted) CanBeDisabledNow() bool {
	if !s.driver.IsIdle() {
		return false
	}

	return s.next == len(s.script) || s.dueCycle() > s.clock.CurrentCycle()
}

// MaxCyclesToSkip returns how many cycles remain until the next access is
// due. It puts no limit once the script is exhausted.
func (s *Scripted) MaxCyclesToSkip() uint64 {
	if s.next == len(s.script) {
		return sim.SkipUnbounded
	}

	return s.dueCycle() - s.clock.CurrentCycle()
}

// EmulateSkippedCycles does nothing. All the timing state is kept as
// absolute cycle numbers.
func (s *Scripted) EmulateSkippedCycles(n uint64) {}

// dueCycle returns the first cycle at which the next access may be requested.
// The gap of the first access counts from cycle 0.
func (s *Scripted) dueCycle() uint64 {
	due := s.script[s.next].Gap
	if s.next > 0 {
		due += s.results[s.next-1].RequestedAt
	}

	return due
}
