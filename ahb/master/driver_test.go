package master

import (
	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/sim"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Driver", func() {
	var (
		mockCtrl *gomock.Controller
		slave    *MockSlave
		owner    *MockOwner
		clock    *fakeClock
		d        *Driver
	)

	grant := func(granted bool) func(m ahb.Master, a ahb.AddrPhase) {
		return func(m ahb.Master, a ahb.AddrPhase) {
			m.AddrPhaseGranted(slave, granted)
		}
	}

	cycle := func() {
		d.Tick()
		d.Tock()
		clock.cycle++
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		slave = NewMockSlave(mockCtrl)
		owner = NewMockOwner(mockCtrl)
		clock = &fakeClock{}

		d = MakeBuilder().
			WithClock(clock).
			BuildDriver("Master.Driver", owner)
		d.ConnectSlave(slave)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should do nothing when idle", func() {
		cycle()

		Expect(d.IsIdle()).To(BeTrue())
	})

	It("should complete a read after the slave stops waiting", func() {
		meta := ahb.Read(0x10, ahb.SizeWord)
		t, ok := d.TryRequest(meta, nil)
		Expect(ok).To(BeTrue())
		Expect(t.Status).To(Equal(StatusAddrPhaseNew))

		slave.EXPECT().AddrPhase(d, ahb.NonSeq(meta, true)).Do(grant(true))
		cycle()
		Expect(t.Status).To(Equal(StatusDataPhase))
		Expect(d.DataPhaseTransfer()).To(BeIdenticalTo(t))

		slave.EXPECT().
			DataPhase(d, ahb.DataPhase{Meta: meta}).
			Return(ahb.Respond(ahb.Pending, 0)).
			Times(2)
		owner.EXPECT().TransfersWillStall().Times(2)
		cycle()
		cycle()

		slave.EXPECT().
			DataPhase(d, ahb.DataPhase{Meta: meta}).
			Return(ahb.Respond(ahb.Success, 0xcafe))
		owner.EXPECT().TransferDone(t, ahb.Data(0xcafe))
		cycle()

		Expect(d.IsIdle()).To(BeTrue())
	})

	It("should present a denied address phase again unchanged", func() {
		meta := ahb.Write(0x20, ahb.SizeHalfword)
		t, _ := d.TryRequest(meta, nil)

		slave.EXPECT().AddrPhase(d, ahb.NonSeq(meta, true)).Do(grant(false))
		owner.EXPECT().TransfersWillStall()
		cycle()
		Expect(t.Status).To(Equal(StatusAddrPhaseWaiting))

		slave.EXPECT().AddrPhase(d, ahb.NonSeq(meta, true)).Do(grant(true))
		cycle()
		Expect(t.Status).To(Equal(StatusDataPhase))
		Expect(t.Denials).To(Equal(1))
	})

	It("should ask for write data once, when the data phase starts", func() {
		meta := ahb.Write(0x20, ahb.SizeWord)
		t, _ := d.TryRequest(meta, nil)

		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(grant(true))
		cycle()

		owner.EXPECT().WriteNeedsDataThisCycle(t).Return(ahb.Data(0x1234))
		slave.EXPECT().
			DataPhase(d, ahb.DataPhase{Meta: meta, WriteData: 0x1234}).
			Return(ahb.Respond(ahb.Pending, 0))
		owner.EXPECT().TransfersWillStall()
		cycle()

		slave.EXPECT().
			DataPhase(d, ahb.DataPhase{Meta: meta, WriteData: 0x1234}).
			Return(ahb.Respond(ahb.Success, 0))
		owner.EXPECT().TransferDone(t, ahb.Data(0x1234))
		cycle()
	})

	It("should pipeline the next address phase behind the data phase", func() {
		first := ahb.Read(0x10, ahb.SizeWord)
		second := ahb.Read(0x14, ahb.SizeWord)
		t1, _ := d.TryRequest(first, nil)

		slave.EXPECT().AddrPhase(d, ahb.NonSeq(first, true)).Do(grant(true))
		cycle()

		t2, ok := d.TryRequest(second, nil)
		Expect(ok).To(BeTrue())

		gomock.InOrder(
			slave.EXPECT().
				DataPhase(d, ahb.DataPhase{Meta: first}).
				Return(ahb.Respond(ahb.Pending, 0)),
			slave.EXPECT().AddrPhase(d, ahb.NonSeq(second, false)).Do(grant(false)),
		)
		owner.EXPECT().TransfersWillStall()
		cycle()

		gomock.InOrder(
			slave.EXPECT().
				DataPhase(d, ahb.DataPhase{Meta: first}).
				Return(ahb.Respond(ahb.Success, 1)),
			slave.EXPECT().AddrPhase(d, ahb.NonSeq(second, true)).Do(grant(true)),
		)
		owner.EXPECT().TransferDone(t1, ahb.Data(1))
		cycle()

		Expect(d.DataPhaseTransfer()).To(BeIdenticalTo(t2))
		Expect(t2.Denials).To(BeZero())
	})

	It("should not pipeline when the master cannot", func() {
		d = MakeBuilder().
			WithClock(clock).
			WithPipelining(false).
			BuildDriver("Master.Driver", owner)
		d.ConnectSlave(slave)

		d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)
		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(grant(true))
		cycle()

		_, ok := d.TryRequest(ahb.Read(0x14, ahb.SizeWord), nil)
		Expect(ok).To(BeFalse())
	})

	It("should refuse a second address phase", func() {
		d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)

		_, ok := d.TryRequest(ahb.Read(0x14, ahb.SizeWord), nil)

		Expect(ok).To(BeFalse())
	})

	It("should report bus errors as aborted transfers", func() {
		meta := ahb.Read(0x10, ahb.SizeWord)
		t, _ := d.TryRequest(meta, nil)

		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(grant(true))
		cycle()

		slave.EXPECT().DataPhase(d, gomock.Any()).Return(ahb.Respond(ahb.Error, 0))
		owner.EXPECT().TransferAborted(t)
		cycle()

		Expect(d.IsIdle()).To(BeTrue())
	})

	It("should cancel a waiting address phase", func() {
		t, _ := d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)

		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(grant(false))
		owner.EXPECT().TransfersWillStall()
		cycle()

		Expect(d.TryForceCancel(t)).To(BeTrue())
		Expect(d.IsIdle()).To(BeTrue())
	})

	It("should not cancel an address phase being presented", func() {
		var t *Transfer

		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(
			func(m ahb.Master, a ahb.AddrPhase) {
				Expect(d.TryForceCancel(t)).To(BeFalse())
				m.AddrPhaseGranted(slave, true)
			})

		t, _ = d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)
		cycle()
	})

	It("should refuse to cancel a transfer in the data phase", func() {
		t, _ := d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)

		slave.EXPECT().AddrPhase(d, gomock.Any()).Do(grant(true))
		cycle()

		Expect(func() { d.TryForceCancel(t) }).To(
			PanicWith(BeAssignableToTypeOf(&sim.ProtocolViolation{})))
	})

	It("should detect an address phase without an answer", func() {
		d.TryRequest(ahb.Read(0x10, ahb.SizeWord), nil)
		slave.EXPECT().AddrPhase(d, gomock.Any())

		d.Tick()

		Expect(func() { d.Tock() }).To(
			PanicWith(BeAssignableToTypeOf(&sim.ProtocolViolation{})))
	})
})
