package memory

import (
	"log"

	"github.com/sarchlab/ahbsim/sim"
)

// Builder can build memories.
type Builder struct {
	base       uint32
	capacity   uint64
	readWaits  int
	writeWaits int
	readOnly   bool
	image      []byte
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity: 64 * 1024,
	}
}

// WithBase sets the address of the first byte.
func (b Builder) WithBase(base uint32) Builder {
	b.base = base
	return b
}

// WithCapacity sets the size in bytes.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithReadWaitStates sets the wait states of every read.
func (b Builder) WithReadWaitStates(n int) Builder {
	b.readWaits = n
	return b
}

// WithWriteWaitStates sets the wait states of every write.
func (b Builder) WithWriteWaitStates(n int) Builder {
	b.writeWaits = n
	return b
}

// WithReadOnly makes bus writes fail.
func (b Builder) WithReadOnly() Builder {
	b.readOnly = true
	return b
}

// WithImage sets the initial content, placed at the base address.
func (b Builder) WithImage(image []byte) Builder {
	b.image = image
	return b
}

// Build creates a memory.
func (b Builder) Build(name string) *Memory {
	sim.NameMustBeValid(name)

	if b.capacity == 0 || uint64(b.base)+b.capacity > 1<<32 {
		log.Panicf("memory %s at 0x%08x with %d bytes does not fit the bus",
			name, b.base, b.capacity)
	}

	if b.readWaits < 0 || b.writeWaits < 0 {
		log.Panicf("memory %s has negative wait states", name)
	}

	m := &Memory{
		name:       name,
		base:       b.base,
		storage:    NewStorage(b.capacity),
		readWaits:  b.readWaits,
		writeWaits: b.writeWaits,
		readOnly:   b.readOnly,
	}

	if len(b.image) > 0 {
		if err := m.WriteMemory(b.base, b.image); err != nil {
			log.Panicf("cannot load the image of %s: %v", name, err)
		}
	}

	return m
}
