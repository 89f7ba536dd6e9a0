package system

import (
	"github.com/sarchlab/ahbsim/ahb/interconnect"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/memory"
	"github.com/sarchlab/ahbsim/peripheral"
	"github.com/sarchlab/ahbsim/sim"
)

// A System is a bus matrix whose components are registered with a harness.
type System struct {
	name    string
	harness *sim.Harness

	masters  []*master.Scripted
	byName   map[string]*master.Scripted
	decoders []*interconnect.Decoder
	arbiters []*interconnect.Arbiter
	slaves   []*slave.FakingDriver

	memories map[string]*memory.Memory
	banks    map[string]*peripheral.RegisterBank
	space    *memory.AddressSpace

	components []sim.Component
}

// Name returns the name of the system.
func (s *System) Name() string {
	return s.name
}

// Harness returns the harness that drives the system.
func (s *System) Harness() *sim.Harness {
	return s.harness
}

// Components returns every component of the system in tick order.
func (s *System) Components() []sim.Component {
	return s.components
}

// Masters returns the masters in the order they were added.
func (s *System) Masters() []*master.Scripted {
	return s.masters
}

// Master returns a master by the name given in its spec.
func (s *System) Master(name string) (*master.Scripted, bool) {
	m, found := s.byName[name]
	return m, found
}

// Decoders returns one decoder per master.
func (s *System) Decoders() []*interconnect.Decoder {
	return s.decoders
}

// Arbiters returns one arbiter per slave.
func (s *System) Arbiters() []*interconnect.Arbiter {
	return s.arbiters
}

// Slaves returns the slave drivers in the order they were added.
func (s *System) Slaves() []*slave.FakingDriver {
	return s.slaves
}

// Memory returns a memory or a ROM by the name given in its spec.
func (s *System) Memory(name string) (*memory.Memory, bool) {
	m, found := s.memories[name]
	return m, found
}

// RegisterBank returns a register bank by the name given in its spec.
func (s *System) RegisterBank(name string) (*peripheral.RegisterBank, bool) {
	b, found := s.banks[name]
	return b, found
}

// AddressSpace gives host access to all the memories of the system.
func (s *System) AddressSpace() *memory.AddressSpace {
	return s.space
}

// Done tells if every master has finished its script.
func (s *System) Done() bool {
	for _, m := range s.masters {
		if !m.Done() {
			return false
		}
	}

	return true
}
