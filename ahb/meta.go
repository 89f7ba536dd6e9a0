// Package ahb defines the wires of an AHB-Lite bus, one cycle at a time, and
// the interfaces that masters, slaves and interconnect components use to
// drive them.
package ahb

import (
	"fmt"
)

// Size is HSIZE, the width of one transfer.
type Size uint8

// Transfer sizes.
const (
	SizeByte Size = iota
	SizeHalfword
	SizeWord
)

// Bytes returns the number of bytes transferred.
func (s Size) Bytes() uint32 {
	return 1 << s
}

// Mask returns a mask that covers the bytes of a right-aligned value.
func (s Size) Mask() uint32 {
	if s >= SizeWord {
		return 0xffffffff
	}

	return (1 << (8 * s.Bytes())) - 1
}

func (s Size) String() string {
	switch s {
	case SizeByte:
		return "byte"
	case SizeHalfword:
		return "halfword"
	case SizeWord:
		return "word"
	default:
		return fmt.Sprintf("size(%d)", uint8(s))
	}
}

// Burst is HBURST. Only single transfers are modeled at full fidelity; the
// other kinds are carried through unchanged.
type Burst uint8

// Burst kinds.
const (
	BurstSingle Burst = iota
	BurstIncr
	BurstWrap4
	BurstIncr4
	BurstWrap8
	BurstIncr8
	BurstWrap16
	BurstIncr16
)

// Direction is HWRITE.
type Direction uint8

// Directions.
const (
	DirRead Direction = iota
	DirWrite
)

func (d Direction) String() string {
	if d == DirWrite {
		return "write"
	}

	return "read"
}

// Prot is HPROT.
type Prot uint8

// HPROT bits.
const (
	ProtData       Prot = 1 << 0
	ProtPrivileged Prot = 1 << 1
	ProtBufferable Prot = 1 << 2
	ProtCacheable  Prot = 1 << 3
)

// Has tells if all the given bits are set.
func (p Prot) Has(bits Prot) bool {
	return p&bits == bits
}

// TransferMeta is the control information of one transfer. It is immutable
// once the address phase is accepted.
type TransferMeta struct {
	Addr  uint32
	Size  Size
	Burst Burst
	Dir   Direction
	Prot  Prot
}

// Read creates the meta of a single read.
func Read(addr uint32, size Size) TransferMeta {
	return TransferMeta{Addr: addr, Size: size, Dir: DirRead, Prot: ProtData}
}

// Write creates the meta of a single write.
func Write(addr uint32, size Size) TransferMeta {
	return TransferMeta{Addr: addr, Size: size, Dir: DirWrite, Prot: ProtData}
}

// WithProt returns a copy of the meta with HPROT replaced.
func (m TransferMeta) WithProt(p Prot) TransferMeta {
	m.Prot = p
	return m
}

// IsWrite tells if the transfer writes.
func (m TransferMeta) IsWrite() bool {
	return m.Dir == DirWrite
}

// IsAligned tells if the address is a multiple of the transfer size.
func (m TransferMeta) IsAligned() bool {
	return m.Addr%m.Size.Bytes() == 0
}

// End returns the address right after the last byte transferred.
func (m TransferMeta) End() uint64 {
	return uint64(m.Addr) + uint64(m.Size.Bytes())
}

// Overlaps tells if two transfers touch at least one common byte.
func (m TransferMeta) Overlaps(o TransferMeta) bool {
	return uint64(m.Addr) < o.End() && uint64(o.Addr) < m.End()
}

func (m TransferMeta) String() string {
	return fmt.Sprintf("%s %s @0x%08x", m.Dir, m.Size, m.Addr)
}
