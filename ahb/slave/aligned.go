package slave

import (
	"github.com/sarchlab/ahbsim/ahb"
)

// A RawReader exposes the stored content of a unit, including the bits that
// a bus read does not see. An AlignedHandler merges narrow writes into it when
// the wrapped handler provides it.
type RawReader interface {
	RawRead(meta ahb.TransferMeta) ahb.Data
}

// AlignedHandler adapts a handler that only understands transfers of its
// native width. Narrow reads read the whole aligned unit and pick the bytes.
// Narrow writes read the unit, merge the new bytes and write the unit back.
type AlignedHandler struct {
	inner  FakingHandler
	native ahb.Size
}

// NewAlignedHandler wraps a handler whose native width is the given size.
func NewAlignedHandler(inner FakingHandler, native ahb.Size) *AlignedHandler {
	return &AlignedHandler{inner: inner, native: native}
}

func (h *AlignedHandler) unitBytes() uint32 {
	return h.native.Bytes()
}

func (h *AlignedHandler) widen(meta ahb.TransferMeta, dir ahb.Direction) ahb.TransferMeta {
	wide := meta
	wide.Addr = ahb.AlignDown(meta.Addr, h.unitBytes())
	wide.Size = h.native
	wide.Dir = dir

	return wide
}

func (h *AlignedHandler) fits(meta ahb.TransferMeta) bool {
	return ahb.FitsIn(meta, h.unitBytes())
}

// PreRead forwards the widened read.
func (h *AlignedHandler) PreRead(meta ahb.TransferMeta) (int, error) {
	if !h.fits(meta) {
		return 0, ErrUnaligned
	}

	return h.inner.PreRead(h.widen(meta, ahb.DirRead))
}

// Read reads the aligned unit and extracts the requested bytes.
func (h *AlignedHandler) Read(meta ahb.TransferMeta) ahb.Data {
	unit := h.inner.Read(h.widen(meta, ahb.DirRead))
	return ahb.ExtractLanes(unit, h.unitBytes(), meta)
}

// PreWrite forwards the widened write.
func (h *AlignedHandler) PreWrite(meta ahb.TransferMeta) (int, error) {
	if !h.fits(meta) {
		return 0, ErrUnaligned
	}

	return h.inner.PreWrite(h.widen(meta, ahb.DirWrite))
}

// Write writes a full unit, merging narrow values into the current content.
func (h *AlignedHandler) Write(meta ahb.TransferMeta, data ahb.Data) {
	wide := h.widen(meta, ahb.DirWrite)

	if meta.Size == h.native {
		h.inner.Write(wide, data)
		return
	}

	var old ahb.Data
	if raw, ok := h.inner.(RawReader); ok {
		old = raw.RawRead(h.widen(meta, ahb.DirRead))
	} else {
		old = h.inner.Read(h.widen(meta, ahb.DirRead))
	}

	h.inner.Write(wide, ahb.MergeLanes(old, h.unitBytes(), meta, data))
}
