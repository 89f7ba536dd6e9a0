package buffers

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
)

// Builder can build buffering stages.
type Builder struct {
	clock      sim.CycleTeller
	capacity   int
	native     ahb.Size
	registered []ahb.AddressRange
	predicate  func(ahb.TransferMeta) bool
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity: 4,
		native:   ahb.SizeWord,
	}
}

// WithClock sets the clock the stages report cycles with.
func (b Builder) WithClock(clock sim.CycleTeller) Builder {
	b.clock = clock
	return b
}

// WithCapacity sets how many writes a write buffer can post.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// WithNativeSize sets the width of the slave behind a line buffer.
func (b Builder) WithNativeSize(s ahb.Size) Builder {
	b.native = s
	return b
}

// WithRegisteredRanges sets the address ranges whose transfers a
// registration buffer delays.
func (b Builder) WithRegisteredRanges(ranges ...ahb.AddressRange) Builder {
	b.registered = append([]ahb.AddressRange(nil), ranges...)
	return b
}

// WithRegisteredFunc sets a predicate that selects the transfers a
// registration buffer delays, in addition to the registered ranges.
func (b Builder) WithRegisteredFunc(f func(ahb.TransferMeta) bool) Builder {
	b.predicate = f
	return b
}

// BuildInputStage creates an InputStage.
func (b Builder) BuildInputStage(name string) *InputStage {
	s := &InputStage{port: newPort(name, b.clock)}
	s.self = s

	return s
}

// BuildRegistrationBuffer creates a RegistrationBuffer.
func (b Builder) BuildRegistrationBuffer(name string) *RegistrationBuffer {
	if len(b.registered) == 0 && b.predicate == nil {
		log.Panicf("registration buffer %s registers nothing", name)
	}

	ranges := b.registered
	predicate := b.predicate

	r := &RegistrationBuffer{
		port: newPort(name, b.clock),
		registered: func(meta ahb.TransferMeta) bool {
			for _, rng := range ranges {
				if rng.Contains(meta.Addr) {
					return true
				}
			}

			return predicate != nil && predicate(meta)
		},
	}
	r.self = r

	return r
}

// BuildWriteBuffer creates a WriteBuffer.
func (b Builder) BuildWriteBuffer(name string) *WriteBuffer {
	if b.capacity <= 0 {
		log.Panicf("write buffer %s must hold at least one write", name)
	}

	w := &WriteBuffer{
		port:  newPort(name, b.clock),
		queue: sim.NewBuffer[postedWrite](sim.BuildName(name, "Queue"), b.capacity),
	}
	w.self = w

	return w
}

// BuildLineBuffer creates a LineBuffer.
func (b Builder) BuildLineBuffer(name string) *LineBuffer {
	if b.native > ahb.SizeWord {
		log.Panicf("line buffer %s cannot be wider than a word", name)
	}

	l := &LineBuffer{
		port:   newPort(name, b.clock),
		native: b.native,
	}
	l.self = l

	return l
}
