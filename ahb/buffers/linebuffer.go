package buffers

import (
	"github.com/sarchlab/ahbsim/ahb"
)

type line struct {
	valid bool
	addr  uint32
	data  ahb.Data
}

// A LineBuffer sits in front of a slave with a wide native width. Cacheable
// reads narrower than the native width are widened to the aligned unit that
// contains them. The unit of the last such read is kept, and later reads
// within it are answered from the buffer without a bus transfer.
//
// Writes pass through and invalidate the kept unit if they overlap it.
// Non-cacheable transfers bypass the buffer.
type LineBuffer struct {
	*port

	native ahb.Size
	line   line

	fillData ahb.Data
	hits     uint64
	misses   uint64
}

// NativeSize returns the width of the slave behind the buffer.
func (l *LineBuffer) NativeSize() ahb.Size {
	return l.native
}

// Hits returns the number of reads answered from the buffer.
func (l *LineBuffer) Hits() uint64 {
	return l.hits
}

// Misses returns the number of reads that fetched a new unit.
func (l *LineBuffer) Misses() uint64 {
	return l.misses
}

// Invalidate drops the kept unit.
func (l *LineBuffer) Invalidate() {
	l.line = line{}
}

func (l *LineBuffer) unitBytes() uint32 {
	return l.native.Bytes()
}

func (l *LineBuffer) cacheable(meta ahb.TransferMeta) bool {
	return !meta.IsWrite() &&
		meta.Prot.Has(ahb.ProtCacheable) &&
		ahb.FitsIn(meta, l.unitBytes())
}

func (l *LineBuffer) hit(meta ahb.TransferMeta) bool {
	return l.line.valid && ahb.AlignDown(meta.Addr, l.unitBytes()) == l.line.addr
}

func (l *LineBuffer) widen(meta ahb.TransferMeta) ahb.TransferMeta {
	wide := meta
	wide.Addr = ahb.AlignDown(meta.Addr, l.unitBytes())
	wide.Size = l.native

	return wide
}

// AddrPhase answers hits locally, widens misses and relays everything else.
func (l *LineBuffer) AddrPhase(m ahb.Master, a ahb.AddrPhase) {
	l.bindUpstream(m)

	meta := a.Meta

	switch {
	case !a.Type.IsActive() || !l.cacheable(meta):
		l.present(presentRelay, a, dataSlot{
			kind: dataForwarded,
			meta: meta,
			down: meta,
			idle: !a.Type.IsActive(),
		})
	case l.hit(meta):
		if !a.Ready {
			l.deny()
			return
		}

		l.hits++
		l.answerUp(true, &dataSlot{
			kind:  dataLocal,
			meta:  meta,
			value: ahb.ExtractLanes(l.line.data, l.unitBytes(), meta),
		})
	default:
		wide := a
		wide.Meta = l.widen(meta)
		l.present(presentRelay, wide, dataSlot{
			kind: dataForwarded,
			meta: meta,
			down: wide.Meta,
			fill: true,
		})
	}
}

// DataPhase answers hits and relays the rest, narrowing the data of fills.
func (l *LineBuffer) DataPhase(m ahb.Master, d ahb.DataPhase) ahb.DataResponse {
	l.checkDataPhase(d)

	if l.data.kind == dataLocal {
		return l.answerData(ahb.Respond(ahb.Success, l.data.value))
	}

	if !l.data.fill {
		return l.forward(d)
	}

	resp := l.downstream.DataPhase(l, ahb.DataPhase{Meta: l.data.down})
	l.fillData = resp.Data

	if resp.Resp == ahb.Success {
		resp.Data = ahb.ExtractLanes(resp.Data, l.unitBytes(), l.data.meta)
	}

	return l.answerData(resp)
}

// Tick does nothing. The buffer reacts to the calls of its master.
func (l *LineBuffer) Tick() {}

// Tock fills the kept unit, invalidates it on accepted writes and commits
// the data slot.
func (l *LineBuffer) Tock() {
	if l.data.fill && l.driven && l.resp.Resp == ahb.Success {
		l.line = line{valid: true, addr: l.data.down.Addr, data: l.fillData}
	}

	if n := l.next; n != nil && n.meta.IsWrite() && l.line.valid {
		unit := ahb.TransferMeta{Addr: l.line.addr, Size: l.native}
		if unit.Overlaps(n.meta) {
			l.Invalidate()
		}
	}

	if n := l.next; n != nil && n.fill {
		l.misses++
	}

	l.fillData = 0
	l.commit()
}
