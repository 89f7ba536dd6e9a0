// Package system assembles masters, buffering stages, decoders, arbiters and
// slaves into a bus matrix driven by one harness.
package system

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/interconnect"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/peripheral"
)

// StageKind names a buffering stage.
type StageKind string

// Buffering stages that can be put in front of a decoder or a slave.
const (
	StageInput        StageKind = "input"
	StageRegistration StageKind = "registration"
	StageWriteBuffer  StageKind = "write_buffer"
	StageLineBuffer   StageKind = "line_buffer"
)

// StageSpec describes one buffering stage.
type StageSpec struct {
	Kind StageKind

	// Capacity is the number of posted writes of a write buffer.
	Capacity int

	// NativeSize is the width of the slave behind a line buffer.
	NativeSize ahb.Size

	// Registered lists the ranges a registration buffer holds for a cycle.
	Registered []ahb.AddressRange
}

// MasterSpec describes a scripted master and the stages between it and its
// decoder.
type MasterSpec struct {
	Name   string
	Script []master.Access
	Stages []StageSpec

	// NoPipelining makes the master wait for the data phase of a transfer
	// to end before it presents the next address.
	NoPipelining bool
}

// SlaveKind names the handler behind a slave port.
type SlaveKind string

// Kinds of slaves.
const (
	SlaveMemory    SlaveKind = "memory"
	SlaveROM       SlaveKind = "rom"
	SlaveRegisters SlaveKind = "registers"
)

// SlaveSpec describes a slave port of the matrix. Every master can reach
// every slave through the arbiter of the slave.
type SlaveSpec struct {
	Name string
	Kind SlaveKind
	Base uint32
	Size uint64

	ReadWaitStates  int
	WriteWaitStates int

	// Image is copied to the start of a memory or a ROM.
	Image []byte

	// Registers and BackToBackPenalty configure a register bank.
	Registers         []peripheral.Register
	BackToBackPenalty int

	// Policy picks the master that wins the slave. Nil means fixed priority
	// in the order the masters were added.
	Policy interconnect.Policy

	Stages []StageSpec
}

// Range returns the addresses the slave decodes.
func (s SlaveSpec) Range() ahb.AddressRange {
	return ahb.AddressRange{Low: s.Base, High: uint64(s.Base) + s.Size}
}
