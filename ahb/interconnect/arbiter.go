package interconnect

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// An Arbiter lets several masters share one slave. Requests presented during
// the tick pass are collected. In its own Tick, the arbiter picks a winner,
// forwards its address phase and denies every other requester. Builders must
// register the arbiter after all its upstream components.
//
// A passthrough arbiter serves exactly one master and forwards its address
// phase as soon as it arrives.
type Arbiter struct {
	*sim.ComponentBase

	clock       sim.CycleTeller
	policy      Policy
	passthrough bool
	upstreams   []ahb.Master
	index       map[ahb.Master]int
	downstream  ahb.Slave

	dataOwner int

	requests []*ahb.AddrPhase
	ticked   bool
	winner   int
	answered bool
	granted  bool
	relayed  bool
	dataResp ahb.DataResponse
}

// AddUpstream connects a master. The order of connection is the index used
// by the policy.
func (a *Arbiter) AddUpstream(m ahb.Master) {
	if _, found := a.index[m]; found {
		log.Panicf("%s is connected to arbiter %s twice", m.Name(), a.Name())
	}

	a.index[m] = len(a.upstreams)
	a.upstreams = append(a.upstreams, m)
	a.requests = append(a.requests, nil)
}

// ConnectDownstream sets the slave that the arbiter drives.
func (a *Arbiter) ConnectDownstream(s ahb.Slave) {
	a.downstream = s
}

// Upstreams returns the connected masters in index order.
func (a *Arbiter) Upstreams() []ahb.Master {
	return a.upstreams
}

// MustBeWired panics if the arbiter cannot work with its connections.
func (a *Arbiter) MustBeWired() {
	if len(a.upstreams) == 0 {
		log.Panicf("arbiter %s has no upstream master", a.Name())
	}

	if a.passthrough && len(a.upstreams) != 1 {
		log.Panicf("passthrough arbiter %s must have exactly one master, has %d",
			a.Name(), len(a.upstreams))
	}

	if a.downstream == nil {
		log.Panicf("arbiter %s has no downstream slave", a.Name())
	}
}

func (a *Arbiter) indexOf(m ahb.Master) int {
	idx, found := a.index[m]
	if !found {
		sim.Violate(a.clock, a, "%s is not connected", m.Name())
	}

	return idx
}

// AddrPhase records a request.
func (a *Arbiter) AddrPhase(m ahb.Master, ap ahb.AddrPhase) {
	idx := a.indexOf(m)

	sim.MustHold(ap.Type.IsActive(), a.clock, a,
		"%s address phase reached the arbiter", ap.Type)
	sim.MustHold(!a.ticked, a.clock, a,
		"request %s arrived after arbitration", ap.Meta)
	sim.MustHold(a.requests[idx] == nil, a.clock, a,
		"two address phases from one master in one cycle")

	a.requests[idx] = &ap

	if a.passthrough {
		a.winner = idx
		a.downstream.AddrPhase(a, ap)
	}
}

// Tick picks the winner among the requests of this cycle.
func (a *Arbiter) Tick() {
	a.ticked = true

	if a.passthrough {
		return
	}

	reqs := make([]Request, 0, len(a.upstreams))
	for i, r := range a.requests {
		if r != nil && r.Ready {
			reqs = append(reqs, Request{Index: i, Meta: r.Meta})
		}
	}

	if len(reqs) > 0 {
		a.winner = reqs[a.policy.Arbitrate(reqs)].Index
	}

	for i, r := range a.requests {
		if r != nil && i != a.winner {
			a.upstreams[i].AddrPhaseGranted(a, false)
		}
	}

	if a.winner >= 0 {
		a.downstream.AddrPhase(a, *a.requests[a.winner])
	}
}

// AddrPhaseGranted relays the grant of the downstream slave to the winner.
func (a *Arbiter) AddrPhaseGranted(s ahb.Slave, granted bool) {
	sim.MustHold(a.winner >= 0, a.clock, a, "grant without a forwarded request")
	sim.MustHold(!a.answered, a.clock, a, "forwarded request answered twice")

	a.answered = true
	a.granted = granted

	if granted {
		a.policy.Granted(Request{
			Index: a.winner,
			Meta:  a.requests[a.winner].Meta,
		})
	}

	a.upstreams[a.winner].AddrPhaseGranted(a, granted)
}

// DataPhase relays the data phase of the master that owns it.
func (a *Arbiter) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	idx := a.indexOf(m)

	sim.MustHold(idx == a.dataOwner, a.clock, a,
		"data phase %s from a master that does not own the data phase", d.Meta)

	a.dataResp = a.downstream.DataPhase(a, d)
	a.relayed = true

	return a.dataResp
}

// DataOwner returns the index of the master that owns the data phase, or -1.
func (a *Arbiter) DataOwner() int {
	return a.dataOwner
}

// Tock commits the owner of the data phase.
func (a *Arbiter) Tock() {
	if a.dataOwner >= 0 {
		sim.MustHold(a.relayed, a.clock, a,
			"the data phase of master %d was not driven", a.dataOwner)
	}

	switch {
	case a.granted:
		a.dataOwner = a.winner
	case a.relayed && a.dataResp.Resp.Ready():
		a.dataOwner = -1
	}

	for i := range a.requests {
		a.requests[i] = nil
	}

	a.ticked = false
	a.winner = -1
	a.answered = false
	a.granted = false
	a.relayed = false
	a.dataResp = ahb.DataResponse{}
}

// CanBeDisabledNow tells if no master owns the data phase.
func (a *Arbiter) CanBeDisabledNow() bool {
	return a.dataOwner < 0
}

// MaxCyclesToSkip puts no limit. The arbiter can sleep as long as its
// masters.
func (a *Arbiter) MaxCyclesToSkip() uint64 {
	return sim.SkipUnbounded
}

// EmulateSkippedCycles does nothing.
func (a *Arbiter) EmulateSkippedCycles(n uint64) {}
