package ahb

// Data is the value carried by one transfer. Values are right-aligned: a byte
// read at address 0x13 returns the byte in bits [7:0]. Byte lanes are little
// endian.
type Data uint32

// laneShift returns the bit offset of addr within a unit of unitBytes.
func laneShift(addr uint32, unitBytes uint32) uint32 {
	return 8 * (addr % unitBytes)
}

// ExtractLanes picks the bytes of a narrow transfer out of the aligned unit
// that contains them.
func ExtractLanes(unit Data, unitBytes uint32, meta TransferMeta) Data {
	shift := laneShift(meta.Addr, unitBytes)
	return Data((uint32(unit) >> shift) & meta.Size.Mask())
}

// MergeLanes writes the bytes of a narrow transfer into the aligned unit that
// contains them, keeping all the other bytes.
func MergeLanes(unit Data, unitBytes uint32, meta TransferMeta, value Data) Data {
	shift := laneShift(meta.Addr, unitBytes)
	mask := meta.Size.Mask() << shift

	return Data((uint32(unit) &^ mask) | ((uint32(value) << shift) & mask))
}

// AlignDown returns the start of the aligned unit that contains addr.
func AlignDown(addr uint32, unitBytes uint32) uint32 {
	return addr - addr%unitBytes
}

// FitsIn tells if the transfer stays within one aligned unit.
func FitsIn(meta TransferMeta, unitBytes uint32) bool {
	return meta.Size.Bytes() <= unitBytes &&
		meta.IsAligned() &&
		AlignDown(meta.Addr, unitBytes) == AlignDown(meta.Addr+meta.Size.Bytes()-1, unitBytes)
}
