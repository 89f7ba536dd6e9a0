package interconnect

import (
	"github.com/sarchlab/ahbsim/ahb"
	"go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoder", func() {
	var (
		mockCtrl *gomock.Controller
		m        *MockMaster
		rom      *MockSlave
		ram      *MockSlave
		clock    *fakeClock
		d        *Decoder
	)

	build := func(reflectsReady bool) {
		d = MakeDecoderBuilder().
			WithClock(clock).
			WithRoute(ahb.AddressRange{Low: 0, High: 0x1000}, rom).
			WithRoute(ahb.AddressRange{Low: 0x2000_0000, High: 0x2000_1000}, ram).
			WithReflectsReady(reflectsReady).
			Build("Decoder")
	}

	endCycle := func() {
		d.Tick()
		d.Tock()
		clock.cycle++
	}

	grantWith := func(s *MockSlave, ap ahb.AddrPhase) {
		s.EXPECT().AddrPhase(d, ap).Do(func(ahb.Master, ahb.AddrPhase) {
			d.AddrPhaseGranted(s, true)
		})
		m.EXPECT().AddrPhaseGranted(d, true)
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		m = NewMockMaster(mockCtrl)
		rom = NewMockSlave(mockCtrl)
		ram = NewMockSlave(mockCtrl)
		clock = &fakeClock{}
		build(true)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should select the slave by address", func() {
		s, found := d.Decode(0x2000_0010)
		Expect(found).To(BeTrue())
		Expect(s).To(BeIdenticalTo(ram))

		s, found = d.Decode(0x0000_0ffc)
		Expect(found).To(BeTrue())
		Expect(s).To(BeIdenticalTo(rom))

		s, found = d.Decode(0x1000_0000)
		Expect(found).To(BeFalse())
		Expect(s).To(BeIdenticalTo(d.DefaultSlave()))
	})

	It("should route the data phase to the slave that accepted it", func() {
		meta := ahb.Read(0x2000_0004, ahb.SizeWord)
		ap := ahb.NonSeq(meta, true)

		grantWith(ram, ap)
		d.AddrPhase(m, ap)
		endCycle()

		ram.EXPECT().
			DataPhase(d, ahb.DataPhase{Meta: meta}).
			Return(ahb.Respond(ahb.Success, 0xcafe))
		resp := d.DataPhase(m, ahb.DataPhase{Meta: meta})
		endCycle()

		Expect(resp).To(Equal(ahb.Respond(ahb.Success, 0xcafe)))
		Expect(d.CanBeDisabledNow()).To(BeTrue())
	})

	It("should keep the data slave while the response is pending", func() {
		meta := ahb.Read(0x10, ahb.SizeWord)
		ap := ahb.NonSeq(meta, true)

		grantWith(rom, ap)
		d.AddrPhase(m, ap)
		endCycle()

		gomock.InOrder(
			rom.EXPECT().
				DataPhase(d, ahb.DataPhase{Meta: meta}).
				Return(ahb.Respond(ahb.Pending, 0)),
			rom.EXPECT().
				DataPhase(d, ahb.DataPhase{Meta: meta}).
				Return(ahb.Respond(ahb.Success, 1)),
		)

		Expect(d.DataPhase(m, ahb.DataPhase{Meta: meta}).Resp).
			To(Equal(ahb.Pending))
		endCycle()
		Expect(d.CanBeDisabledNow()).To(BeFalse())

		Expect(d.DataPhase(m, ahb.DataPhase{Meta: meta}).Resp).
			To(Equal(ahb.Success))
		endCycle()
		Expect(d.CanBeDisabledNow()).To(BeTrue())
	})

	It("should answer a bus error for addresses without a route", func() {
		meta := ahb.Write(0x1000_0000, ahb.SizeWord)

		m.EXPECT().AddrPhaseGranted(d, true)
		d.AddrPhase(m, ahb.NonSeq(meta, true))
		endCycle()

		resp := d.DataPhase(m, ahb.DataPhase{Meta: meta, WriteData: 1})
		endCycle()

		Expect(resp.Resp).To(Equal(ahb.Error))
		Expect(d.CanBeDisabledNow()).To(BeTrue())
	})

	It("should forward the ready signal of the master", func() {
		ap := ahb.NonSeq(ahb.Read(0x10, ahb.SizeWord), false)

		rom.EXPECT().AddrPhase(d, ap).Do(func(ahb.Master, ahb.AddrPhase) {
			d.AddrPhaseGranted(rom, false)
		})
		m.EXPECT().AddrPhaseGranted(d, false)

		d.AddrPhase(m, ap)
		endCycle()
	})

	Context("when generating its own ready signal", func() {
		BeforeEach(func() {
			build(false)
		})

		It("should report ready without a data phase in flight", func() {
			meta := ahb.Read(0x10, ahb.SizeWord)

			grantWith(rom, ahb.NonSeq(meta, true))
			d.AddrPhase(m, ahb.NonSeq(meta, false))
			endCycle()
		})

		It("should report the readiness of the data slave", func() {
			first := ahb.Read(0x10, ahb.SizeWord)
			second := ahb.Read(0x2000_0000, ahb.SizeWord)

			grantWith(rom, ahb.NonSeq(first, true))
			d.AddrPhase(m, ahb.NonSeq(first, true))
			endCycle()

			rom.EXPECT().
				DataPhase(d, ahb.DataPhase{Meta: first}).
				Return(ahb.Respond(ahb.Pending, 0))
			ram.EXPECT().
				AddrPhase(d, ahb.NonSeq(second, false)).
				Do(func(ahb.Master, ahb.AddrPhase) {
					d.AddrPhaseGranted(ram, false)
				})
			m.EXPECT().AddrPhaseGranted(d, false)

			d.DataPhase(m, ahb.DataPhase{Meta: first})
			d.AddrPhase(m, ahb.NonSeq(second, true))
			endCycle()
		})

		It("should panic if ready is needed before the data phase", func() {
			meta := ahb.Read(0x10, ahb.SizeWord)

			grantWith(rom, ahb.NonSeq(meta, true))
			d.AddrPhase(m, ahb.NonSeq(meta, true))
			endCycle()

			Expect(func() {
				d.AddrPhase(m, ahb.NonSeq(meta, true))
			}).To(Panic())
		})
	})

	It("should panic on a data phase without an address phase", func() {
		Expect(func() {
			d.DataPhase(m, ahb.DataPhase{Meta: ahb.Read(0x10, ahb.SizeWord)})
		}).To(Panic())
	})

	It("should panic on an idle address phase", func() {
		Expect(func() {
			d.AddrPhase(m, ahb.AddrPhase{Type: ahb.TransIdle, Ready: true})
		}).To(Panic())
	})

	It("should refuse overlapping routes", func() {
		rom.EXPECT().Name().Return("ROM").AnyTimes()
		ram.EXPECT().Name().Return("RAM").AnyTimes()

		Expect(func() {
			MakeDecoderBuilder().
				WithClock(clock).
				WithRoute(ahb.AddressRange{Low: 0, High: 0x1000}, rom).
				WithRoute(ahb.AddressRange{Low: 0x800, High: 0x2000}, ram).
				Build("Decoder")
		}).To(Panic())
	})

	It("should refuse to run without routes", func() {
		d = MakeDecoderBuilder().WithClock(clock).Build("Decoder")

		Expect(d.MustBeWired).To(Panic())
	})
})
