package interconnect

import (
	"context"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// sram is a word memory that answers every access after a fixed number of
// wait states.
type sram struct {
	words map[uint32]ahb.Data
	waits int
}

func (m *sram) PreRead(meta ahb.TransferMeta) (int, error) {
	return m.waits, nil
}

func (m *sram) Read(meta ahb.TransferMeta) ahb.Data {
	return m.words[meta.Addr]
}

func (m *sram) PreWrite(meta ahb.TransferMeta) (int, error) {
	return m.waits, nil
}

func (m *sram) Write(meta ahb.TransferMeta, data ahb.Data) {
	m.words[meta.Addr] = data
}

var _ = Describe("Two masters sharing a slave", func() {
	var (
		h      *sim.Harness
		memory *sram
		cpu    *master.Scripted
		dma    *master.Scripted
	)

	build := func(policy Policy, cpuScript, dmaScript []master.Access) {
		h = sim.MakeHarnessBuilder().Build()
		memory = &sram{words: map[uint32]ahb.Data{0x2000_0000: 0x11}}

		cpu = master.MakeBuilder().
			WithClock(h).
			WithScript(cpuScript).
			BuildScripted("CPU")
		dma = master.MakeBuilder().
			WithClock(h).
			WithScript(dmaScript).
			BuildScripted("DMA")

		arbiter := MakeArbiterBuilder().
			WithClock(h).
			WithPolicy(policy).
			WithUpstreams(cpu.Driver(), dma.Driver()).
			Build("Arbiter")
		cpu.Driver().ConnectSlave(arbiter)
		dma.Driver().ConnectSlave(arbiter)

		ram := slave.MakeBuilder().WithClock(h).BuildFaking("SRAM", memory)
		decoder := MakeDecoderBuilder().
			WithClock(h).
			WithRoute(ahb.AddressRange{Low: 0x2000_0000, High: 0x2001_0000}, ram).
			Build("Decoder")
		arbiter.ConnectDownstream(decoder)

		h.Register(cpu)
		h.Register(dma)
		h.Register(arbiter)
		h.Register(decoder)
		h.Register(ram)
	}

	It("should serve the master with the higher priority first", func() {
		build(FixedPriority{},
			[]master.Access{{Meta: ahb.Read(0x2000_0000, ahb.SizeWord)}},
			[]master.Access{{Meta: ahb.Write(0x2000_0000, ahb.SizeWord), Data: 0xbeef}},
		)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		Expect(cpu.Results()).To(Equal([]master.Result{{
			Resp:        ahb.Success,
			Data:        0x11,
			Completed:   true,
			AcceptedAt:  0,
			CompletedAt: 1,
		}}))
		Expect(dma.Results()).To(Equal([]master.Result{{
			Resp:        ahb.Success,
			Completed:   true,
			AcceptedAt:  1,
			CompletedAt: 2,
			Denials:     1,
		}}))
		Expect(memory.words[0x2000_0000]).To(Equal(ahb.Data(0xbeef)))
	})

	It("should let the reversed policy favor the last master", func() {
		build(ReversedFixedPriority{},
			[]master.Access{{Meta: ahb.Read(0x2000_0000, ahb.SizeWord)}},
			[]master.Access{{Meta: ahb.Write(0x2000_0000, ahb.SizeWord), Data: 0xbeef}},
		)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		Expect(dma.Results()[0].AcceptedAt).To(Equal(uint64(0)))
		Expect(cpu.Results()[0].Denials).To(Equal(1))
		Expect(cpu.Results()[0].Data).To(Equal(ahb.Data(0xbeef)))
	})

	It("should stretch the grant of the loser by the wait states", func() {
		build(FixedPriority{},
			[]master.Access{{Meta: ahb.Read(0x2000_0000, ahb.SizeWord)}},
			[]master.Access{{Meta: ahb.Read(0x2000_0004, ahb.SizeWord)}},
		)
		memory.waits = 2

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		Expect(cpu.Results()[0].CompletedAt).To(Equal(uint64(3)))
		Expect(dma.Results()[0].AcceptedAt).To(Equal(uint64(3)))
		Expect(dma.Results()[0].CompletedAt).To(Equal(uint64(6)))
		Expect(dma.Results()[0].Denials).To(Equal(3))
	})

	It("should abort transfers to unmapped addresses", func() {
		build(FixedPriority{},
			[]master.Access{{Meta: ahb.Read(0x4000_0000, ahb.SizeWord)}},
			[]master.Access{{Meta: ahb.Read(0x2000_0000, ahb.SizeWord), Gap: 4}},
		)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		Expect(cpu.Results()[0].Resp).To(Equal(ahb.Error))
		Expect(dma.Results()[0].Resp).To(Equal(ahb.Success))
		Expect(dma.Results()[0].RequestedAt).To(Equal(uint64(4)))
	})
})
