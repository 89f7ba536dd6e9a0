package slave

import (
	"log"

	"github.com/sarchlab/ahbsim/sim"
)

// Builder can build slave drivers.
type Builder struct {
	clock     sim.CycleTeller
	writeMode WriteMode
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		writeMode: WriteDeferred,
	}
}

// WithClock sets the clock the drivers report cycles with.
func (b Builder) WithClock(clock sim.CycleTeller) Builder {
	b.clock = clock
	return b
}

// WithWriteMode sets when writes reach the handler.
func (b Builder) WithWriteMode(mode WriteMode) Builder {
	b.writeMode = mode
	return b
}

// BuildFaking creates a driver that serves a FakingHandler. If the handler
// also implements WaitStateAdjuster, it is asked to adjust wait states.
func (b Builder) BuildFaking(name string, handler FakingHandler) *FakingDriver {
	b.mustBeValid(handler)

	s := &FakingDriver{
		ComponentBase: sim.NewComponentBase(name),
		clock:         b.clock,
		handler:       handler,
		writeMode:     b.writeMode,
	}

	if adjuster, ok := handler.(WaitStateAdjuster); ok {
		s.adjuster = adjuster
	}

	return s
}

// BuildSimple creates a driver that serves a simple Handler.
func (b Builder) BuildSimple(name string, handler Handler) *Driver {
	b.mustBeValid(handler)

	return &Driver{
		ComponentBase: sim.NewComponentBase(name),
		clock:         b.clock,
		handler:       handler,
	}
}

func (b Builder) mustBeValid(handler any) {
	if b.clock == nil {
		log.Panic("a clock is required to build a slave driver")
	}

	if handler == nil {
		log.Panic("a handler is required to build a slave driver")
	}
}
