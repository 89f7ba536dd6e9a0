// Package buffers provides the stages that sit between one master and one
// slave and keep the single-flight rule where the protocol would otherwise
// break it: denials, registration delay, write posting and width mismatch.
package buffers

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// dataKind tells who answers the data phase that the upstream master drives.
type dataKind int

const (
	dataNone dataKind = iota

	// dataHeld is accepted from upstream but not yet by downstream. It is
	// answered Pending.
	dataHeld

	// dataForwarded is owned by the downstream slave and relayed.
	dataForwarded

	// dataLocal is answered by the stage itself.
	dataLocal
)

type dataSlot struct {
	kind dataKind
	meta ahb.TransferMeta

	// down is the meta the downstream slave accepted. It differs from meta
	// only for widened transfers.
	down ahb.TransferMeta

	// value answers local reads.
	value ahb.Data

	// idle slots answer a transfer that never reached the slave.
	idle bool

	// fill slots bring a whole unit into a line buffer.
	fill bool
}

type presenter int

const (
	presentNone presenter = iota
	presentRelay
	presentOwn
)

type stage interface {
	ahb.Slave
	ahb.Master
}

// port keeps the wires shared by every stage: one upstream master, one
// downstream slave and the data phase that the master drives.
type port struct {
	*sim.ComponentBase

	clock      sim.CycleTeller
	self       stage
	upstream   ahb.Master
	downstream ahb.Slave

	data dataSlot

	next         *dataSlot
	relayNext    dataSlot
	upAnswered   bool
	presented    presenter
	downAnswered bool
	downGranted  bool
	driven       bool
	resp         ahb.DataResponse
}

func newPort(name string, clock sim.CycleTeller) *port {
	if clock == nil {
		log.Panic("a clock is required to build a buffering stage")
	}

	return &port{
		ComponentBase: sim.NewComponentBase(name),
		clock:         clock,
	}
}

// ConnectDownstream sets the slave the stage drives.
func (p *port) ConnectDownstream(s ahb.Slave) {
	p.downstream = s
}

// Downstream returns the slave the stage drives.
func (p *port) Downstream() ahb.Slave {
	return p.downstream
}

// MustBeWired panics if the stage has nowhere to send transfers.
func (p *port) MustBeWired() {
	if p.downstream == nil {
		log.Panicf("%s has no downstream slave", p.Name())
	}
}

func (p *port) bindUpstream(m ahb.Master) {
	if p.upstream == nil {
		p.upstream = m
		return
	}

	sim.MustHold(p.upstream == m, p.clock, p.self,
		"a buffering stage only serves one master")
}

// answerUp drives the grant wire of the upstream master. A granted transfer
// takes the data slot described by next at the end of the cycle.
func (p *port) answerUp(granted bool, next *dataSlot) {
	sim.MustHold(!p.upAnswered, p.clock, p.self, "address phase answered twice")

	p.upAnswered = true
	if granted {
		p.next = next
	}

	p.upstream.AddrPhaseGranted(p.self, granted)
}

func (p *port) deny() {
	p.answerUp(false, nil)
}

// present drives the address phase of the downstream slave. A relayed
// address phase hands the grant of the slave to the upstream master, which
// then takes relayNext.
func (p *port) present(by presenter, a ahb.AddrPhase, relayNext dataSlot) {
	sim.MustHold(p.presented == presentNone, p.clock, p.self,
		"two address phases presented in one cycle")

	p.presented = by
	p.relayNext = relayNext
	p.downstream.AddrPhase(p.self, a)
}

// AddrPhaseGranted receives the grant wire of the downstream slave.
func (p *port) AddrPhaseGranted(s ahb.Slave, granted bool) {
	sim.MustHold(s == p.downstream, p.clock, p.self,
		"grant from a slave that is not connected")
	sim.MustHold(p.presented != presentNone, p.clock, p.self,
		"grant without an address phase")
	sim.MustHold(!p.downAnswered, p.clock, p.self,
		"downstream address phase answered twice")

	p.downAnswered = true
	p.downGranted = granted

	if p.presented == presentRelay {
		next := p.relayNext
		p.answerUp(granted, &next)
	}
}

// forward relays a data phase to the downstream slave.
func (p *port) forward(d ahb.DataPhase) ahb.DataResponse {
	p.driven = true
	p.resp = p.downstream.DataPhase(p.self, d)

	return p.resp
}

// answerData answers a data phase locally.
func (p *port) answerData(resp ahb.DataResponse) ahb.DataResponse {
	p.driven = true
	p.resp = resp

	return resp
}

func (p *port) checkDataPhase(d ahb.DataPhase) {
	if p.data.kind == dataNone {
		sim.Violate(p.clock, p.self, "data phase %s without an address phase",
			d.Meta)
	}

	sim.MustHold(d.Meta == p.data.meta, p.clock, p.self,
		"data phase %s does not match address phase %s", d.Meta, p.data.meta)
}

// commit moves the data slot at the end of the cycle and clears the wires.
func (p *port) commit() {
	if p.data.kind != dataNone && p.data.kind != dataLocal && !p.data.idle {
		sim.MustHold(p.driven, p.clock, p.self,
			"data phase of %s was not driven", p.data.meta)
	}

	if p.data.idle || (p.driven && p.resp.Resp.Ready()) {
		p.data = dataSlot{}
	}

	if p.next != nil {
		sim.MustHold(p.data.kind == dataNone, p.clock, p.self,
			"address phase accepted while the data phase is pending")
		p.data = *p.next
	}

	if p.data.kind == dataHeld && p.presented == presentOwn && p.downGranted {
		p.data.kind = dataForwarded
	}

	p.next = nil
	p.relayNext = dataSlot{}
	p.upAnswered = false
	p.presented = presentNone
	p.downAnswered = false
	p.downGranted = false
	p.driven = false
	p.resp = ahb.DataResponse{}
}

// CanBeDisabledNow tells if no data phase is in flight.
func (p *port) CanBeDisabledNow() bool {
	return p.data.kind == dataNone
}

// MaxCyclesToSkip puts no limit. An empty stage can sleep as long as its
// master.
func (p *port) MaxCyclesToSkip() uint64 {
	return sim.SkipUnbounded
}

// EmulateSkippedCycles does nothing.
func (p *port) EmulateSkippedCycles(n uint64) {}
