package ahb

import "github.com/sarchlab/ahbsim/sim"

// A Slave is anything a master can drive: a slave driver, a decoder, an
// arbiter port or a buffering stage.
//
// Every cycle, during the tick pass, a master first drives the data phase of
// its previous transfer (if any) and then presents an address phase (if it
// has one). DataPhase must answer synchronously from state committed at the
// previous clock edge. AddrPhase must be answered with exactly one call to
// Master.AddrPhaseGranted before the tock pass starts. The answer may come
// from within AddrPhase or later in the tick pass of the slave.
type Slave interface {
	sim.Named

	AddrPhase(m Master, a AddrPhase)
	DataPhase(m Master, d DataPhase) DataResponse
}

// A Master is anything that drives a Slave. It learns through the grant side
// wire whether the address phase it presented this cycle was accepted. A
// denied address phase must be presented again, unchanged, in a later cycle.
type Master interface {
	sim.Named

	AddrPhaseGranted(s Slave, granted bool)
}

// AddressRange is a half-open range of addresses [Low, High).
type AddressRange struct {
	Low  uint32
	High uint64
}

// Contains tells if an address is within the range.
func (r AddressRange) Contains(addr uint32) bool {
	return addr >= r.Low && uint64(addr) < r.High
}

// Covers tells if every byte of a transfer is within the range.
func (r AddressRange) Covers(meta TransferMeta) bool {
	return r.Contains(meta.Addr) && meta.End() <= r.High
}

// Overlaps tells if two ranges share an address.
func (r AddressRange) Overlaps(o AddressRange) bool {
	return uint64(r.Low) < o.High && uint64(o.Low) < r.High
}
