package buffers

import (
	"context"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func postedWriteMeta(addr uint32) ahb.TransferMeta {
	return ahb.Write(addr, ahb.SizeWord).WithProt(ahb.ProtData | ahb.ProtBufferable)
}

var _ = Describe("WriteBuffer", func() {
	var (
		mockCtrl *gomock.Controller
		m        *MockMaster
		down     *MockSlave
		clock    *fakeClock
		w        *WriteBuffer
	)

	endCycle := func() {
		w.Tick()
		w.Tock()
		clock.cycle++
	}

	downAnswers := func(ap ahb.AddrPhase, granted bool) {
		down.EXPECT().AddrPhase(w, ap).Do(func(ahb.Master, ahb.AddrPhase) {
			w.AddrPhaseGranted(down, granted)
		})
	}

	post := func(meta ahb.TransferMeta, data ahb.Data) {
		m.EXPECT().AddrPhaseGranted(w, true)
		w.AddrPhase(m, ahb.NonSeq(meta, true))
		endCycle()

		Expect(w.DataPhase(m, ahb.DataPhase{Meta: meta, WriteData: data})).
			To(Equal(ahb.Respond(ahb.Success, 0)))
		endCycle()
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		m = NewMockMaster(mockCtrl)
		down = NewMockSlave(mockCtrl)
		clock = &fakeClock{}
		w = MakeBuilder().WithClock(clock).WithCapacity(2).BuildWriteBuffer("WriteBuffer")
		w.ConnectDownstream(down)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should answer a posted write at once and drain it later", func() {
		meta := postedWriteMeta(0x100)

		post(meta, 0xab)
		Expect(w.Len()).To(Equal(1))

		downAnswers(ahb.NonSeq(meta, true), true)
		endCycle()

		down.EXPECT().
			DataPhase(w, ahb.DataPhase{Meta: meta, WriteData: 0xab}).
			Return(ahb.Respond(ahb.Success, 0))
		endCycle()

		Expect(w.IsEmpty()).To(BeTrue())
		Expect(w.CanBeDisabledNow()).To(BeTrue())
	})

	It("should hold back a read of a posted address", func() {
		meta := postedWriteMeta(0x100)
		read := ahb.Read(0x100, ahb.SizeByte)

		post(meta, 0xab)

		m.EXPECT().AddrPhaseGranted(w, false)
		downAnswers(ahb.NonSeq(meta, true), true)
		w.AddrPhase(m, ahb.NonSeq(read, true))
		endCycle()

		m.EXPECT().AddrPhaseGranted(w, false)
		down.EXPECT().
			DataPhase(w, ahb.DataPhase{Meta: meta, WriteData: 0xab}).
			Return(ahb.Respond(ahb.Pending, 0))
		w.AddrPhase(m, ahb.NonSeq(read, true))
		endCycle()

		down.EXPECT().
			DataPhase(w, ahb.DataPhase{Meta: meta, WriteData: 0xab}).
			Return(ahb.Respond(ahb.Success, 0))
		endCycle()

		downAnswers(ahb.NonSeq(read, true), true)
		m.EXPECT().AddrPhaseGranted(w, true)
		w.AddrPhase(m, ahb.NonSeq(read, true))
		endCycle()
	})

	It("should let an unrelated read overtake and then drain", func() {
		meta := postedWriteMeta(0x100)
		read := ahb.Read(0x200, ahb.SizeWord)

		post(meta, 0xab)

		downAnswers(ahb.NonSeq(read, true), true)
		m.EXPECT().AddrPhaseGranted(w, true)
		w.AddrPhase(m, ahb.NonSeq(read, true))
		endCycle()

		down.EXPECT().
			DataPhase(w, ahb.DataPhase{Meta: read}).
			Return(ahb.Respond(ahb.Success, 0x9))
		Expect(w.DataPhase(m, ahb.DataPhase{Meta: read}).Data).
			To(Equal(ahb.Data(0x9)))

		m.EXPECT().AddrPhaseGranted(w, false)
		w.AddrPhase(m, ahb.NonSeq(ahb.Read(0x300, ahb.SizeWord), true))

		downAnswers(ahb.NonSeq(meta, true), true)
		endCycle()
	})

	It("should keep non-bufferable writes behind posted ones", func() {
		post(postedWriteMeta(0x100), 0xab)

		m.EXPECT().AddrPhaseGranted(w, false)
		downAnswers(ahb.NonSeq(postedWriteMeta(0x100), true), false)
		w.AddrPhase(m, ahb.NonSeq(ahb.Write(0x400, ahb.SizeWord), true))
		endCycle()
	})

	It("should deny posting when full", func() {
		first := postedWriteMeta(0x100)
		second := postedWriteMeta(0x104)
		third := postedWriteMeta(0x108)

		post(first, 1)

		m.EXPECT().AddrPhaseGranted(w, true)
		downAnswers(ahb.NonSeq(first, true), false)
		w.AddrPhase(m, ahb.NonSeq(second, true))
		endCycle()

		m.EXPECT().AddrPhaseGranted(w, false)
		downAnswers(ahb.NonSeq(first, true), false)
		w.DataPhase(m, ahb.DataPhase{Meta: second, WriteData: 2})
		w.AddrPhase(m, ahb.NonSeq(third, true))
		endCycle()

		Expect(w.Len()).To(Equal(2))
	})

	It("should report a posted write the slave refused", func() {
		meta := postedWriteMeta(0x100)

		var lost []ahb.TransferEvent
		w.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos == HookPosWriteLost {
				lost = append(lost, ctx.Item.(ahb.TransferEvent))
			}
		}))

		post(meta, 0xab)

		downAnswers(ahb.NonSeq(meta, true), true)
		endCycle()

		down.EXPECT().
			DataPhase(w, gomock.Any()).
			Return(ahb.Respond(ahb.Error, 0))
		endCycle()

		Expect(lost).To(HaveLen(1))
		Expect(lost[0].Meta).To(Equal(meta))
		Expect(lost[0].Data).To(Equal(ahb.Data(0xab)))
		Expect(w.IsEmpty()).To(BeTrue())
	})
})

var _ = Describe("WriteBuffer on a bus", func() {
	It("should return the posted value to a later read", func() {
		h := sim.MakeHarnessBuilder().Build()
		memory := &sram{words: map[uint32]ahb.Data{}, waits: 2}

		cpu := master.MakeBuilder().
			WithClock(h).
			WithScript([]master.Access{
				{Meta: postedWriteMeta(0x2000_0000), Data: 0x55},
				{Meta: ahb.Read(0x2000_0000, ahb.SizeWord)},
			}).
			BuildScripted("CPU")
		wb := MakeBuilder().WithClock(h).BuildWriteBuffer("WriteBuffer")
		ram := slave.MakeBuilder().WithClock(h).BuildFaking("SRAM", memory)

		cpu.Driver().ConnectSlave(wb)
		wb.ConnectDownstream(ram)

		h.Register(cpu)
		h.Register(wb)
		h.Register(ram)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		results := cpu.Results()
		Expect(results[0].CompletedAt).To(Equal(uint64(1)))
		Expect(results[1].Data).To(Equal(ahb.Data(0x55)))
		Expect(results[1].AcceptedAt).To(Equal(uint64(6)))
		Expect(memory.words[0x2000_0000]).To(Equal(ahb.Data(0x55)))
	})
})
