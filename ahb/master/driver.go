package master

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// A Driver holds at most one transfer in the address phase and one in the
// data phase. The component that owns the Driver calls Tick and Tock from its
// own Tick and Tock.
type Driver struct {
	sim.HookableBase

	name        string
	clock       sim.CycleTeller
	owner       Owner
	slave       ahb.Slave
	canPipeline bool

	addr *Transfer
	data *Transfer

	presented  *Transfer
	readyHigh  bool
	answered   bool
	granted    bool
	dataDriven bool
	dataResp   ahb.DataResponse
}

// Name returns the name of the driver.
func (d *Driver) Name() string {
	return d.name
}

// ConnectSlave sets the slave port that the driver drives.
func (d *Driver) ConnectSlave(s ahb.Slave) {
	d.slave = s
}

// Slave returns the slave port that the driver drives.
func (d *Driver) Slave() ahb.Slave {
	return d.slave
}

// CanPipeline tells if a new transfer can enter the address phase while
// another one is in the data phase.
func (d *Driver) CanPipeline() bool {
	return d.canPipeline
}

// AddrPhaseTransfer returns the transfer in the address phase, if any.
func (d *Driver) AddrPhaseTransfer() *Transfer {
	return d.addr
}

// DataPhaseTransfer returns the transfer in the data phase, if any.
func (d *Driver) DataPhaseTransfer() *Transfer {
	return d.data
}

// IsIdle tells if the driver has nothing in flight.
func (d *Driver) IsIdle() bool {
	return d.addr == nil && d.data == nil
}

// TryRequest starts a new transfer. It fails if the address slot is taken,
// or if the data slot is taken and the master cannot pipeline.
func (d *Driver) TryRequest(meta ahb.TransferMeta, payload any) (*Transfer, bool) {
	if d.addr != nil {
		return nil, false
	}

	if d.data != nil && !d.canPipeline {
		return nil, false
	}

	t := &Transfer{
		ID:          sim.GetIDGenerator().Generate(),
		Meta:        meta,
		Status:      StatusAddrPhaseNew,
		Payload:     payload,
		RequestedAt: d.clock.CurrentCycle(),
	}
	d.addr = t

	return t, true
}

// TryForceCancel drops a transfer that is still in the address phase and is
// not being presented in the current cycle. Cancelling a transfer in the data
// phase is a protocol violation.
func (d *Driver) TryForceCancel(t *Transfer) bool {
	if t == d.data {
		sim.Violate(d.clock, d,
			"transfer %s cannot be cancelled in the data phase", t.Meta)
	}

	if t != d.addr || t == d.presented {
		return false
	}

	d.addr = nil
	d.invokeHook(ahb.HookPosTransferAborted, t, 0)

	return true
}

// Tick drives the data phase of the previous transfer and then presents the
// address phase of the next one.
func (d *Driver) Tick() {
	d.presented = nil
	d.answered = false
	d.granted = false
	d.dataDriven = false
	d.dataResp = ahb.DataResponse{}

	ready := true

	if d.data != nil {
		d.driveDataPhase()
		ready = d.dataResp.Resp.Ready()
	}

	if d.addr != nil {
		d.presentAddrPhase(ready)
	}
}

func (d *Driver) driveDataPhase() {
	t := d.data

	if t.Meta.IsWrite() && !t.hasWriteData {
		t.Data = d.owner.WriteNeedsDataThisCycle(t)
		t.hasWriteData = true
	}

	d.dataResp = d.slave.DataPhase(d, ahb.DataPhase{
		Meta:      t.Meta,
		WriteData: t.Data,
	})
	d.dataDriven = true
}

func (d *Driver) presentAddrPhase(ready bool) {
	sim.MustHold(d.slave != nil, d.clock, d, "no slave connected")

	d.presented = d.addr
	d.readyHigh = ready
	d.invokeHook(ahb.HookPosAddrPresented, d.addr, 0)

	d.slave.AddrPhase(d, ahb.NonSeq(d.addr.Meta, ready))
}

// AddrPhaseGranted receives the grant side wire.
func (d *Driver) AddrPhaseGranted(s ahb.Slave, granted bool) {
	sim.MustHold(d.presented != nil, d.clock, d,
		"grant received without an address phase")
	sim.MustHold(!d.answered, d.clock, d,
		"address phase answered twice")
	if sim.AssertionsEnabled && s != d.slave {
		sim.Violate(d.clock, d, "grant from %s, which is not the connected slave",
			s.Name())
	}

	d.answered = true
	d.granted = granted
}

// Tock commits the outcome of the cycle and then calls back the owner.
func (d *Driver) Tock() {
	var (
		done, aborted *Transfer
		advanced      bool
	)

	if d.dataDriven {
		switch d.dataResp.Resp {
		case ahb.Success:
			done = d.data
			if !done.Meta.IsWrite() {
				done.Data = d.dataResp.Data
			}

			d.data = nil
			advanced = true
		case ahb.Error:
			aborted = d.data
			d.data = nil
			advanced = true
		}
	}

	if p := d.presented; p != nil {
		sim.MustHold(d.answered, d.clock, d,
			"address phase %s got no grant answer", p.Meta)

		if d.granted {
			sim.MustHold(d.data == nil, d.clock, d,
				"address phase %s accepted while the data phase is pending",
				p.Meta)

			p.Status = StatusDataPhase
			p.AcceptedAt = d.clock.CurrentCycle()
			d.data = p
			d.addr = nil
			advanced = true

			d.invokeHook(ahb.HookPosAddrAccepted, p, 0)
		} else {
			p.Status = StatusAddrPhaseWaiting

			// With HREADY low the address phase is extended, not refused.
			if d.readyHigh {
				p.Denials++
				d.invokeHook(ahb.HookPosAddrDenied, p, 0)
			}
		}
	}

	d.presented = nil

	if done != nil {
		d.invokeHook(ahb.HookPosTransferDone, done, done.Data)
		d.owner.TransferDone(done, done.Data)
	}

	if aborted != nil {
		d.invokeHook(ahb.HookPosTransferAborted, aborted, 0)
		d.owner.TransferAborted(aborted)
	}

	if !advanced && (d.addr != nil || d.data != nil) {
		d.invokeHook(ahb.HookPosStall, nil, 0)
		d.owner.TransfersWillStall()
	}
}

// AssertState checks the single-flight invariant.
func (d *Driver) AssertState() {
	if d.addr != nil {
		sim.MustHold(d.addr.Status != StatusDataPhase, d.clock, d,
			"transfer %s in the address slot is in the data phase", d.addr.Meta)
	}

	if d.data != nil {
		sim.MustHold(d.data.Status == StatusDataPhase, d.clock, d,
			"transfer %s in the data slot is in %s", d.data.Meta, d.data.Status)
	}
}

func (d *Driver) invokeHook(pos *sim.HookPos, t *Transfer, data ahb.Data) {
	if d.NumHooks() == 0 {
		return
	}

	evt := ahb.TransferEvent{Cycle: d.clock.CurrentCycle(), Data: data}
	if t != nil {
		evt.ID = t.ID
		evt.Meta = t.Meta
	}

	d.InvokeHook(sim.HookCtx{
		Domain: d,
		Pos:    pos,
		Item:   evt,
		Detail: t,
	})
}
