package interconnect

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// DecoderBuilder can build decoders.
type DecoderBuilder struct {
	clock         sim.CycleTeller
	routes        []Route
	defaultSlave  ahb.Slave
	reflectsReady bool
}

// MakeDecoderBuilder returns a DecoderBuilder with default parameters.
func MakeDecoderBuilder() DecoderBuilder {
	return DecoderBuilder{
		reflectsReady: true,
	}
}

// WithClock sets the clock the decoder reports cycles with.
func (b DecoderBuilder) WithClock(clock sim.CycleTeller) DecoderBuilder {
	b.clock = clock
	return b
}

// WithRoute adds a route. Routes must not overlap.
func (b DecoderBuilder) WithRoute(r ahb.AddressRange, s ahb.Slave) DecoderBuilder {
	routes := make([]Route, len(b.routes), len(b.routes)+1)
	copy(routes, b.routes)
	b.routes = append(routes, Route{Range: r, Slave: s})

	return b
}

// WithDefaultSlave sets the slave that serves addresses without a route. The
// slave must be registered to the harness separately. Without it, the decoder
// owns an internal slave that answers every transfer with a bus error.
func (b DecoderBuilder) WithDefaultSlave(s ahb.Slave) DecoderBuilder {
	b.defaultSlave = s
	return b
}

// WithReflectsReady sets whether the decoder forwards the ready signal of its
// master or generates its own.
func (b DecoderBuilder) WithReflectsReady(reflects bool) DecoderBuilder {
	b.reflectsReady = reflects
	return b
}

// Build creates a decoder.
func (b DecoderBuilder) Build(name string) *Decoder {
	if b.clock == nil {
		log.Panic("a clock is required to build a decoder")
	}

	b.routesMustNotOverlap()

	d := &Decoder{
		ComponentBase: sim.NewComponentBase(name),
		clock:         b.clock,
		routes:        b.routes,
		defaultSlave:  b.defaultSlave,
		reflectsReady: b.reflectsReady,
	}

	if d.defaultSlave == nil {
		d.ownDefault = newDefaultSlave(sim.BuildName(name, "Default"), b.clock)
		d.defaultSlave = d.ownDefault
	}

	return d
}

func (b DecoderBuilder) routesMustNotOverlap() {
	for i, r := range b.routes {
		if r.Slave == nil {
			log.Panicf("route %d has no slave", i)
		}

		if uint64(r.Range.Low) >= r.Range.High {
			log.Panicf("route %d to %s is empty", i, r.Slave.Name())
		}

		for _, o := range b.routes[:i] {
			if r.Range.Overlaps(o.Range) {
				log.Panicf("routes to %s and %s overlap",
					o.Slave.Name(), r.Slave.Name())
			}
		}
	}
}

// ArbiterBuilder can build arbiters.
type ArbiterBuilder struct {
	clock       sim.CycleTeller
	policy      Policy
	passthrough bool
	upstreams   []ahb.Master
}

// MakeArbiterBuilder returns an ArbiterBuilder with default parameters.
func MakeArbiterBuilder() ArbiterBuilder {
	return ArbiterBuilder{}
}

// WithClock sets the clock the arbiter reports cycles with.
func (b ArbiterBuilder) WithClock(clock sim.CycleTeller) ArbiterBuilder {
	b.clock = clock
	return b
}

// WithPolicy sets the arbitration policy. The default is FixedPriority.
func (b ArbiterBuilder) WithPolicy(p Policy) ArbiterBuilder {
	b.policy = p
	return b
}

// WithPassthrough builds an arbiter that serves exactly one master and
// forwards its requests without arbitration.
func (b ArbiterBuilder) WithPassthrough() ArbiterBuilder {
	b.passthrough = true
	return b
}

// WithUpstreams connects masters in priority order.
func (b ArbiterBuilder) WithUpstreams(ms ...ahb.Master) ArbiterBuilder {
	b.upstreams = append([]ahb.Master(nil), ms...)
	return b
}

// Build creates an arbiter.
func (b ArbiterBuilder) Build(name string) *Arbiter {
	if b.clock == nil {
		log.Panic("a clock is required to build an arbiter")
	}

	a := &Arbiter{
		ComponentBase: sim.NewComponentBase(name),
		clock:         b.clock,
		policy:        b.policy,
		passthrough:   b.passthrough,
		index:         make(map[ahb.Master]int),
		dataOwner:     -1,
		winner:        -1,
	}

	if a.policy == nil {
		a.policy = FixedPriority{}
	}

	for _, m := range b.upstreams {
		a.AddUpstream(m)
	}

	return a
}

// PolicyByName creates a policy from its configuration name.
func PolicyByName(name string) (Policy, bool) {
	switch name {
	case "", "fixed":
		return FixedPriority{}, true
	case "reversed":
		return ReversedFixedPriority{}, true
	case "round-robin":
		return &RoundRobin{}, true
	default:
		return nil, false
	}
}
