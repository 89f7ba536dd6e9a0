package system

import (
	"fmt"
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/buffers"
	"github.com/sarchlab/ahbsim/ahb/interconnect"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/memory"
	"github.com/sarchlab/ahbsim/peripheral"
	"github.com/sarchlab/ahbsim/sim"
)

// A Registrar takes the components of a system in tick order.
type Registrar interface {
	RegisterComponent(c sim.Component)
}

type harnessRegistrar struct {
	h *sim.Harness
}

func (r harnessRegistrar) RegisterComponent(c sim.Component) {
	r.h.Register(c)
}

// Builder can build bus matrices.
type Builder struct {
	harness       *sim.Harness
	registrar     Registrar
	reflectsReady bool
	masters       []MasterSpec
	slaves        []SlaveSpec
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		reflectsReady: true,
	}
}

// WithHarness sets the harness that drives and registers the components.
func (b Builder) WithHarness(h *sim.Harness) Builder {
	b.harness = h
	return b
}

// WithRegistrar sets where the components are registered. By default they
// are registered directly with the harness.
func (b Builder) WithRegistrar(r Registrar) Builder {
	b.registrar = r
	return b
}

// WithReflectsReady sets whether the decoders pass the ready wire of their
// master through instead of computing their own.
func (b Builder) WithReflectsReady(reflects bool) Builder {
	b.reflectsReady = reflects
	return b
}

// WithMaster adds a master. Masters are ticked in the order they are added.
func (b Builder) WithMaster(spec MasterSpec) Builder {
	masters := make([]MasterSpec, len(b.masters), len(b.masters)+1)
	copy(masters, b.masters)
	b.masters = append(masters, spec)

	return b
}

// WithSlave adds a slave port.
func (b Builder) WithSlave(spec SlaveSpec) Builder {
	slaves := make([]SlaveSpec, len(b.slaves), len(b.slaves)+1)
	copy(slaves, b.slaves)
	b.slaves = append(slaves, spec)

	return b
}

// Build creates the components, wires them, and registers them in tick
// order: masters, master-side stages, decoders, arbiters,
// slave-side stages, slaves.
func (b Builder) Build(name string) *System {
	b.mustBeValid()

	s := &System{
		name:     name,
		harness:  b.harness,
		space:    memory.NewAddressSpace(),
		memories: make(map[string]*memory.Memory),
		banks:    make(map[string]*peripheral.RegisterBank),
		byName:   make(map[string]*master.Scripted),
	}

	var slaveStages, slaveDrivers []sim.Component

	routes := make([]interconnect.Route, 0, len(b.slaves))

	for _, spec := range b.slaves {
		portName := sim.BuildName(name, spec.Name)

		driver := b.buildSlave(s, portName, spec)
		s.slaves = append(s.slaves, driver)
		slaveDrivers = append(slaveDrivers, driver)

		head, stages := b.buildStages(portName, spec.Stages, driver)
		slaveStages = append(slaveStages, stages...)

		policy := spec.Policy
		if policy == nil {
			policy = interconnect.FixedPriority{}
		}

		arbiter := interconnect.MakeArbiterBuilder().
			WithClock(b.harness).
			WithPolicy(policy).
			Build(sim.BuildName(portName, "Arbiter"))
		arbiter.ConnectDownstream(head)
		s.arbiters = append(s.arbiters, arbiter)

		routes = append(routes, interconnect.Route{Range: spec.Range(), Slave: arbiter})
	}

	var masterStages []sim.Component

	for _, spec := range b.masters {
		masterName := sim.BuildName(name, spec.Name)

		m := master.MakeBuilder().
			WithClock(b.harness).
			WithPipelining(!spec.NoPipelining).
			WithScript(spec.Script).
			BuildScripted(masterName)
		s.masters = append(s.masters, m)
		s.byName[spec.Name] = m

		db := interconnect.MakeDecoderBuilder().
			WithClock(b.harness).
			WithReflectsReady(b.reflectsReady)
		for _, r := range routes {
			db = db.WithRoute(r.Range, r.Slave)
		}

		decoder := db.Build(sim.BuildName(masterName, "Decoder"))
		s.decoders = append(s.decoders, decoder)

		for _, a := range s.arbiters {
			a.AddUpstream(decoder)
		}

		head, stages := b.buildStages(masterName, spec.Stages, decoder)
		masterStages = append(masterStages, stages...)
		m.Driver().ConnectSlave(head)
	}

	for _, m := range s.masters {
		s.components = append(s.components, m)
	}

	s.components = append(s.components, masterStages...)

	for _, d := range s.decoders {
		s.components = append(s.components, d)
	}

	for _, a := range s.arbiters {
		s.components = append(s.components, a)
	}

	s.components = append(s.components, slaveStages...)
	s.components = append(s.components, slaveDrivers...)

	registrar := b.registrar
	if registrar == nil {
		registrar = harnessRegistrar{h: b.harness}
	}

	for _, c := range s.components {
		registrar.RegisterComponent(c)
	}

	return s
}

func (b Builder) mustBeValid() {
	if b.harness == nil {
		log.Panic("a harness is required to build a system")
	}

	if len(b.masters) == 0 {
		log.Panic("a system needs at least one master")
	}

	if len(b.slaves) == 0 {
		log.Panic("a system needs at least one slave")
	}

	for _, m := range b.masters {
		for _, st := range m.Stages {
			if st.Kind == StageLineBuffer {
				log.Panicf("%s: a line buffer must sit in front of a slave, "+
					"where it sees the writes of every master", m.Name)
			}
		}
	}

	names := make(map[string]bool)
	for _, n := range b.names() {
		if names[n] {
			log.Panicf("%s is used by two masters or slaves", n)
		}

		names[n] = true
	}
}

func (b Builder) names() []string {
	names := make([]string, 0, len(b.masters)+len(b.slaves))

	for _, m := range b.masters {
		names = append(names, m.Name)
	}

	for _, s := range b.slaves {
		names = append(names, s.Name)
	}

	return names
}

func (b Builder) buildSlave(
	s *System,
	name string,
	spec SlaveSpec,
) *slave.FakingDriver {
	var handler slave.FakingHandler

	switch spec.Kind {
	case SlaveMemory, SlaveROM:
		mb := memory.MakeBuilder().
			WithBase(spec.Base).
			WithCapacity(spec.Size).
			WithReadWaitStates(spec.ReadWaitStates).
			WithWriteWaitStates(spec.WriteWaitStates)
		if spec.Kind == SlaveROM {
			mb = mb.WithReadOnly()
		}

		if len(spec.Image) > 0 {
			mb = mb.WithImage(spec.Image)
		}

		mem := mb.Build(name)
		s.memories[spec.Name] = mem
		s.space.Map(mem)
		handler = mem
	case SlaveRegisters:
		if spec.Size >= 1<<32 {
			log.Panicf("register bank %s does not fit in the address space", name)
		}

		pb := peripheral.MakeBuilder().
			WithClock(b.harness).
			WithBase(spec.Base).
			WithSize(uint32(spec.Size)).
			WithWaitStates(spec.ReadWaitStates, spec.WriteWaitStates).
			WithBackToBackPenalty(spec.BackToBackPenalty)
		for _, r := range spec.Registers {
			pb = pb.WithRegister(r)
		}

		bank := pb.Build(name)
		s.banks[spec.Name] = bank
		handler = bank.Handler()
	default:
		log.Panicf("slave %s has unknown kind %q", name, spec.Kind)
	}

	return slave.MakeBuilder().WithClock(b.harness).BuildFaking(name, handler)
}

type stage interface {
	sim.Component
	ahb.Slave
	ahb.Master
	ConnectDownstream(s ahb.Slave)
}

// buildStages chains the stages in front of the target. It returns the
// slave the upstream side connects to and the stages in tick order.
func (b Builder) buildStages(
	owner string,
	specs []StageSpec,
	target ahb.Slave,
) (ahb.Slave, []sim.Component) {
	built := make([]stage, 0, len(specs))

	for i, spec := range specs {
		built = append(built, b.buildStage(
			sim.BuildNameWithIndex(owner, "Stage", i), spec))
	}

	next := target
	for i := len(built) - 1; i >= 0; i-- {
		built[i].ConnectDownstream(next)
		next = built[i]
	}

	components := make([]sim.Component, 0, len(built))
	for _, st := range built {
		components = append(components, st)
	}

	return next, components
}

func (b Builder) buildStage(name string, spec StageSpec) stage {
	bb := buffers.MakeBuilder().WithClock(b.harness)

	if spec.Capacity > 0 {
		bb = bb.WithCapacity(spec.Capacity)
	}

	if spec.NativeSize != 0 {
		bb = bb.WithNativeSize(spec.NativeSize)
	}

	switch spec.Kind {
	case StageInput:
		return bb.BuildInputStage(name)
	case StageRegistration:
		return bb.WithRegisteredRanges(spec.Registered...).BuildRegistrationBuffer(name)
	case StageWriteBuffer:
		return bb.BuildWriteBuffer(name)
	case StageLineBuffer:
		return bb.BuildLineBuffer(name)
	default:
		panic(fmt.Sprintf("stage %s has unknown kind %q", name, spec.Kind))
	}
}
