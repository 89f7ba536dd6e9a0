package peripheral

import (
	"log"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"
)

// Builder can build register banks.
type Builder struct {
	clock      sim.CycleTeller
	base       uint32
	size       uint32
	regs       []Register
	readWaits  int
	writeWaits int
	penalty    int
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		size: 0x1000,
	}
}

// WithClock sets the clock used to detect back-to-back transfers.
func (b Builder) WithClock(clock sim.CycleTeller) Builder {
	b.clock = clock
	return b
}

// WithBase sets the address of the bank.
func (b Builder) WithBase(base uint32) Builder {
	b.base = base
	return b
}

// WithSize sets the number of bytes the bank decodes.
func (b Builder) WithSize(size uint32) Builder {
	b.size = size
	return b
}

// WithRegister adds a register.
func (b Builder) WithRegister(r Register) Builder {
	regs := make([]Register, len(b.regs), len(b.regs)+1)
	copy(regs, b.regs)
	b.regs = append(regs, r)

	return b
}

// WithWaitStates sets the wait states of reads and writes.
func (b Builder) WithWaitStates(read, write int) Builder {
	b.readWaits = read
	b.writeWaits = write

	return b
}

// WithBackToBackPenalty sets the extra wait states of a transfer that
// directly follows one to the same register.
func (b Builder) WithBackToBackPenalty(n int) Builder {
	b.penalty = n
	return b
}

// Build creates a register bank.
func (b Builder) Build(name string) *RegisterBank {
	sim.NameMustBeValid(name)

	if b.clock == nil {
		log.Panic("a clock is required to build a register bank")
	}

	if b.readWaits < 0 || b.writeWaits < 0 || b.penalty < 0 {
		log.Panicf("register bank %s has negative wait states", name)
	}

	bank := &RegisterBank{
		name:       name,
		clock:      b.clock,
		base:       b.base,
		size:       b.size,
		regs:       make(map[uint32]*Register),
		readWaits:  b.readWaits,
		writeWaits: b.writeWaits,
		penalty:    b.penalty,
	}

	for i := range b.regs {
		r := b.regs[i]

		if r.Offset%4 != 0 || r.Offset+4 > b.size {
			log.Panicf("register %s of %s is at a bad offset 0x%x",
				r.Name, name, r.Offset)
		}

		if _, dup := bank.regs[r.Offset]; dup {
			log.Panicf("two registers of %s at offset 0x%x", name, r.Offset)
		}

		r.ResetValue()
		bank.regs[r.Offset] = &r
	}

	bank.aligned = slave.NewAlignedHandler(bank, ahb.SizeWord)

	return bank
}
