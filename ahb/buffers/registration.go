package buffers

import (
	"github.com/sarchlab/ahbsim/ahb"
)

// A RegistrationBuffer delays the address phase of selected transfers by one
// cycle. Targets that sample the address one cycle late are served this way.
// Other transfers pass through unchanged.
//
// While a registered address phase is held, the data phase of the master is
// answered Pending and new address phases are denied.
type RegistrationBuffer struct {
	*port

	registered func(ahb.TransferMeta) bool
}

// IsHolding tells if a registered address phase waits to be presented.
func (b *RegistrationBuffer) IsHolding() bool {
	return b.data.kind == dataHeld
}

// IsRegistered tells if a transfer is delayed by the buffer.
func (b *RegistrationBuffer) IsRegistered(meta ahb.TransferMeta) bool {
	return b.registered(meta)
}

// AddrPhase holds registered transfers and relays the others.
func (b *RegistrationBuffer) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	b.bindUpstream(m)

	switch {
	case b.data.kind == dataHeld:
		b.deny()
	case a.Type.IsActive() && b.registered(a.Meta):
		if !a.Ready {
			b.deny()
			return
		}

		b.answerUp(true, &dataSlot{kind: dataHeld, meta: a.Meta, down: a.Meta})
	default:
		b.present(presentRelay, a,
			dataSlot{
				kind: dataForwarded,
				meta: a.Meta,
				down: a.Meta,
				idle: !a.Type.IsActive(),
			})
	}
}

// DataPhase answers Pending while the address phase is held and relays the
// data phase otherwise.
func (b *RegistrationBuffer) DataPhase(
	m ahb.Master,
	d ahb.DataPhase,
) ahb.DataResponse {
	b.checkDataPhase(d)

	if b.data.kind == dataHeld {
		return b.answerData(ahb.Respond(ahb.Pending, 0))
	}

	return b.forward(d)
}

// Tick presents the held address phase.
func (b *RegistrationBuffer) Tick() {
	if b.data.kind == dataHeld {
		b.present(presentOwn, ahb.NonSeq(b.data.meta, true), dataSlot{})
	}
}

// Tock commits the data slot.
func (b *RegistrationBuffer) Tock() {
	b.commit()
}
