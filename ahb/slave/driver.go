package slave

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

type simpleDataPhase struct {
	master   ahb.Master
	meta     ahb.TransferMeta
	rejected bool
}

// Driver serves one simple Handler, polling it once per cycle of the data
// phase.
type Driver struct {
	*sim.ComponentBase

	clock   sim.CycleTeller
	handler Handler

	cur *simpleDataPhase

	next     *simpleDataPhase
	addrSeen bool
	driven   bool
	resp     ahb.DataResponse
	wdata    ahb.Data
}

// AddrPhase accepts an address phase if the data phase of this cycle, if
// any, finishes. The data phase must be driven before the address phase.
func (s *Driver) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	sim.MustHold(!s.addrSeen, s.clock, s, "two address phases in one cycle")
	s.addrSeen = true

	ready := true
	if s.cur != nil {
		sim.MustHold(s.driven, s.clock, s,
			"address phase %s presented before the data phase", a.Meta)
		ready = s.resp.Resp.Ready()
	}

	granted := a.Ready && ready
	if granted {
		dp := &simpleDataPhase{master: m, meta: a.Meta}
		if a.Type.IsActive() && a.Meta.IsWrite() {
			dp.rejected = s.handler.PreWrite(a.Meta) == ahb.Error
		}

		s.next = dp
	}

	m.AddrPhaseGranted(s, granted)
}

// DataPhase polls the handler.
func (s *Driver) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	if s.cur == nil {
		sim.Violate(s.clock, s, "data phase %s without an address phase", d.Meta)
	}

	sim.MustHold(m == s.cur.master, s.clock, s,
		"data phase driven by a master that does not own it")

	if s.driven {
		return s.resp
	}

	s.driven = true
	s.wdata = d.WriteData

	switch {
	case s.cur.rejected:
		s.resp = ahb.Respond(ahb.Error, 0)
	case !d.Meta.IsWrite():
		resp, data := s.handler.ReadData(d.Meta)
		s.resp = ahb.Respond(resp, data)
	default:
		s.resp = ahb.Respond(s.handler.WriteData(d.Meta, d.WriteData, false), 0)
	}

	return s.resp
}

// Tick does nothing. The driver reacts to the calls of its master.
func (s *Driver) Tick() {}

// Tock finalizes successful writes and commits the accepted address phase.
func (s *Driver) Tock() {
	if s.cur != nil {
		sim.MustHold(s.driven, s.clock, s,
			"data phase of %s was not driven", s.cur.meta)

		if s.resp.Resp == ahb.Success && s.cur.meta.IsWrite() {
			s.handler.WriteData(s.cur.meta, s.wdata, true)
		}

		if s.resp.Resp.Ready() {
			s.cur = nil
		}
	}

	if s.next != nil {
		s.cur = s.next
	}

	s.next = nil
	s.addrSeen = false
	s.driven = false
	s.resp = ahb.DataResponse{}
	s.wdata = 0
}
