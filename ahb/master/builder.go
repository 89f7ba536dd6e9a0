package master

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// Builder can build master drivers and scripted masters.
type Builder struct {
	clock       sim.CycleTeller
	canPipeline bool
	script      []Access
	onFinished  func()
}

// MakeBuilder returns a Builder with default parameters. Drivers pipeline by
// default, as AHB-Lite masters do.
func MakeBuilder() Builder {
	return Builder{
		canPipeline: true,
	}
}

// WithClock sets the clock the components report cycles with.
func (b Builder) WithClock(clock sim.CycleTeller) Builder {
	b.clock = clock
	return b
}

// WithPipelining sets whether a new address phase may overlap the data phase
// of the previous transfer.
func (b Builder) WithPipelining(canPipeline bool) Builder {
	b.canPipeline = canPipeline
	return b
}

// WithScript sets the accesses a scripted master issues.
func (b Builder) WithScript(script []Access) Builder {
	b.script = script
	return b
}

// WithOnFinished sets a function that is called once all the accesses of a
// scripted master completed.
func (b Builder) WithOnFinished(f func()) Builder {
	b.onFinished = f
	return b
}

// BuildDriver creates a driver that works for the owner.
func (b Builder) BuildDriver(name string, owner Owner) *Driver {
	sim.NameMustBeValid(name)
	b.clockMustBeSet()

	return &Driver{
		name:        name,
		clock:       b.clock,
		owner:       owner,
		canPipeline: b.canPipeline,
	}
}

// BuildScripted creates a scripted master.
func (b Builder) BuildScripted(name string) *Scripted {
	b.clockMustBeSet()

	s := &Scripted{
		ComponentBase: sim.NewComponentBase(name),
		clock:         b.clock,
		script:        b.script,
		results:       make([]Result, len(b.script)),
		onFinished:    b.onFinished,
	}
	s.driver = b.BuildDriver(sim.BuildName(name, "Driver"), s)

	return s
}

func (b Builder) clockMustBeSet() {
	if b.clock == nil {
		log.Panic("a clock is required to build a master")
	}
}

var _ ahb.Master = (*Driver)(nil)
