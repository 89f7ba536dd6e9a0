package interconnect

import (
	"errors"
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"
)

// ErrNotDecoded is the error of transfers to addresses no route covers.
var ErrNotDecoded = errors.New("address not decoded")

// Route maps an address range to a slave.
type Route struct {
	Range ahb.AddressRange
	Slave ahb.Slave
}

// A Decoder routes the address phase of its single master to the slave whose
// range contains the address, or to the default slave. It relays the grant
// and the data-phase response back unchanged.
//
// A decoder that reflects HREADY forwards the ready signal of its master. One
// that does not generates ready from the response of the slave that owns the
// data phase, and reports ready when no data phase is in flight.
type Decoder struct {
	*sim.ComponentBase

	clock         sim.CycleTeller
	routes        []Route
	defaultSlave  ahb.Slave
	ownDefault    *slave.FakingDriver
	reflectsReady bool
	upstream      ahb.Master

	dataSlave ahb.Slave

	target   ahb.Slave
	answered bool
	granted  bool
	relayed  bool
	dataResp ahb.DataResponse
}

// Decode returns the slave that serves an address. The bool is false if the
// address falls through to the default slave.
func (d *Decoder) Decode(addr uint32) (ahb.Slave, bool) {
	for _, r := range d.routes {
		if r.Range.Contains(addr) {
			return r.Slave, true
		}
	}

	return d.defaultSlave, false
}

// Routes returns the routes of the decoder.
func (d *Decoder) Routes() []Route {
	return d.routes
}

// DefaultSlave returns the slave that serves addresses without a route.
func (d *Decoder) DefaultSlave() ahb.Slave {
	return d.defaultSlave
}

// MustBeWired panics if the decoder cannot route anything.
func (d *Decoder) MustBeWired() {
	if len(d.routes) == 0 {
		log.Panicf("decoder %s has no route", d.Name())
	}
}

func (d *Decoder) bindUpstream(m ahb.Master) {
	if d.upstream == nil {
		d.upstream = m
		return
	}

	sim.MustHold(d.upstream == m, d.clock, d,
		"a decoder only serves one master")
}

func (d *Decoder) localReady() bool {
	if d.dataSlave == nil {
		return true
	}

	sim.MustHold(d.relayed, d.clock, d,
		"ready is needed before the data phase was driven")

	return d.dataResp.Resp.Ready()
}

// AddrPhase forwards the address phase to the selected slave.
func (d *Decoder) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	d.bindUpstream(m)

	sim.MustHold(a.Type.IsActive(), d.clock, d,
		"%s address phase reached the decoder", a.Type)
	sim.MustHold(d.target == nil, d.clock, d,
		"two address phases in one cycle")

	if !d.reflectsReady {
		a.Ready = d.localReady()
	}

	d.target, _ = d.Decode(a.Meta.Addr)
	d.target.AddrPhase(d, a)
}

// AddrPhaseGranted relays the grant of the selected slave.
func (d *Decoder) AddrPhaseGranted(s ahb.Slave, granted bool) {
	sim.MustHold(s == d.target, d.clock, d,
		"grant from a slave that was not selected")
	sim.MustHold(!d.answered, d.clock, d, "address phase answered twice")

	d.answered = true
	d.granted = granted

	d.upstream.AddrPhaseGranted(d, granted)
}

// DataPhase relays the data phase to the slave that accepted the address
// phase.
func (d *Decoder) DataPhase(m ahb.Master, dp ahb.DataPhase) ahb.DataResponse {
	if d.dataSlave == nil {
		sim.Violate(d.clock, d, "data phase %s without an address phase", dp.Meta)
	}

	d.dataResp = d.dataSlave.DataPhase(d, dp)
	d.relayed = true

	return d.dataResp
}

// Tick lets the default slave owned by the decoder tick.
func (d *Decoder) Tick() {
	if d.ownDefault != nil {
		d.ownDefault.Tick()
	}
}

// Tock commits which slave owns the data phase.
func (d *Decoder) Tock() {
	if d.dataSlave != nil {
		sim.MustHold(d.relayed, d.clock, d, "the data phase was not driven")
	}

	switch {
	case d.granted:
		d.dataSlave = d.target
	case d.relayed && d.dataResp.Resp.Ready():
		d.dataSlave = nil
	}

	if d.ownDefault != nil {
		d.ownDefault.Tock()
	}

	d.target = nil
	d.answered = false
	d.granted = false
	d.relayed = false
	d.dataResp = ahb.DataResponse{}
}

// CanBeDisabledNow tells if no data phase is in flight.
func (d *Decoder) CanBeDisabledNow() bool {
	return d.dataSlave == nil
}

// MaxCyclesToSkip puts no limit. The decoder can sleep as long as its master.
func (d *Decoder) MaxCyclesToSkip() uint64 {
	return sim.SkipUnbounded
}

// EmulateSkippedCycles does nothing.
func (d *Decoder) EmulateSkippedCycles(n uint64) {}
