// Package peripheral models memory-mapped peripherals as banks of plain
// registers served through a faking slave driver.
package peripheral

import (
	"fmt"
)

// A Register is one 32-bit peripheral register.
//
// Reserved bits read as zero and ignore writes. Read-only bits ignore bus
// writes. Write-only bits read as zero.
type Register struct {
	Name          string
	Offset        uint32
	Reset         uint32
	ReservedMask  uint32
	ReadOnlyMask  uint32
	WriteOnlyMask uint32

	// OnWrite, if set, is called after a bus write changed the value.
	OnWrite func(r *Register, old uint32)

	value uint32
}

// Value returns the stored value, including write-only bits.
func (r *Register) Value() uint32 {
	return r.value
}

// Set changes the value from the peripheral side. Only reserved bits are
// protected.
func (r *Register) Set(v uint32) {
	r.value = v &^ r.ReservedMask
}

// ResetValue restores the reset value.
func (r *Register) ResetValue() {
	r.Set(r.Reset)
}

// BusRead returns the value that a bus read observes.
func (r *Register) BusRead() uint32 {
	return r.value &^ (r.ReservedMask | r.WriteOnlyMask)
}

// BusWrite applies a bus write and reports the value before it.
func (r *Register) BusWrite(v uint32) (old uint32) {
	old = r.value
	keep := r.ReservedMask | r.ReadOnlyMask

	r.value = (old & keep) | (v &^ keep)
	r.value &^= r.ReservedMask

	return old
}

// Field returns the bits [lsb, lsb+width) of the stored value.
func (r *Register) Field(lsb, width uint) uint32 {
	return (r.value >> lsb) & (1<<width - 1)
}

// SetField changes the bits [lsb, lsb+width) from the peripheral side.
func (r *Register) SetField(lsb, width uint, v uint32) {
	mask := uint32(1<<width-1) << lsb
	r.Set((r.value &^ mask) | ((v << lsb) & mask))
}

func (r *Register) String() string {
	return fmt.Sprintf("%s@+0x%03x=0x%08x", r.Name, r.Offset, r.value)
}
