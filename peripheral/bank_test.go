package peripheral

import (
	"context"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const gpioBase = 0x4002_2000

var _ = Describe("RegisterBank", func() {
	var (
		h       *sim.Harness
		bank    *RegisterBank
		written []uint32
	)

	build := func(penalty int) {
		h = sim.MakeHarnessBuilder().Build()
		written = nil

		bank = MakeBuilder().
			WithClock(h).
			WithBase(gpioBase).
			WithRegister(Register{Name: "DataOut", Offset: 0x0}).
			WithRegister(Register{
				Name:         "Status",
				Offset:       0x4,
				Reset:        0x8000_0000,
				ReadOnlyMask: 0xffff_0000,
			}).
			WithRegister(Register{
				Name:          "Key",
				Offset:        0xc,
				WriteOnlyMask: 0xff00,
			}).
			WithRegister(Register{
				Name:   "Event",
				Offset: 0x8,
				OnWrite: func(r *Register, old uint32) {
					written = append(written, r.Value())
				},
			}).
			WithBackToBackPenalty(penalty).
			Build("GPIO")
	}

	run := func(script []master.Access) []master.Result {
		cpu := master.MakeBuilder().
			WithClock(h).
			WithScript(script).
			BuildScripted("CPU")
		driver := slave.MakeBuilder().
			WithClock(h).
			BuildFaking("GPIO", bank.Handler())
		cpu.Driver().ConnectSlave(driver)

		h.Register(cpu)
		h.Register(driver)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		return cpu.Results()
	}

	BeforeEach(func() {
		build(0)
	})

	It("should apply bus writes through the masks", func() {
		results := run([]master.Access{
			{Meta: ahb.Write(gpioBase+4, ahb.SizeWord), Data: 0x1234_5678},
			{Meta: ahb.Read(gpioBase+4, ahb.SizeWord)},
		})

		Expect(results[1].Data).To(Equal(ahb.Data(0x8000_5678)))
	})

	It("should merge narrow writes", func() {
		results := run([]master.Access{
			{Meta: ahb.Write(gpioBase, ahb.SizeWord), Data: 0x1122_3344},
			{Meta: ahb.Write(gpioBase+2, ahb.SizeByte), Data: 0xff},
			{Meta: ahb.Read(gpioBase, ahb.SizeWord)},
		})

		Expect(results[2].Data).To(Equal(ahb.Data(0x11ff_3344)))
	})

	It("should keep write-only bits when merging narrow writes", func() {
		results := run([]master.Access{
			{Meta: ahb.Write(gpioBase+0xc, ahb.SizeWord), Data: 0x1234},
			{Meta: ahb.Write(gpioBase+0xc, ahb.SizeByte), Data: 0x55},
			{Meta: ahb.Read(gpioBase+0xc, ahb.SizeWord)},
		})

		key, _ := bank.Register(0xc)
		Expect(key.Value()).To(Equal(uint32(0x1255)))
		Expect(results[2].Data).To(Equal(ahb.Data(0x55)))
	})

	It("should call the write callback on change", func() {
		run([]master.Access{
			{Meta: ahb.Write(gpioBase+8, ahb.SizeWord), Data: 1},
			{Meta: ahb.Write(gpioBase+8, ahb.SizeWord), Data: 1},
			{Meta: ahb.Write(gpioBase+8, ahb.SizeWord), Data: 2},
		})

		Expect(written).To(Equal([]uint32{1, 2}))
	})

	It("should answer a bus error for holes", func() {
		results := run([]master.Access{
			{Meta: ahb.Read(gpioBase+0x10, ahb.SizeWord)},
		})

		Expect(results[0].Resp).To(Equal(ahb.Error))
	})

	It("should take longer for back-to-back transfers to one register", func() {
		build(1)

		results := run([]master.Access{
			{Meta: ahb.Write(gpioBase, ahb.SizeWord), Data: 1},
			{Meta: ahb.Read(gpioBase, ahb.SizeWord)},
		})

		Expect(results[0].CompletedAt).To(Equal(uint64(1)))
		Expect(results[1].AcceptedAt).To(Equal(uint64(1)))
		Expect(results[1].CompletedAt).To(Equal(uint64(3)))
	})

	It("should not slow down transfers with a gap", func() {
		build(1)

		results := run([]master.Access{
			{Meta: ahb.Write(gpioBase, ahb.SizeWord), Data: 1},
			{Meta: ahb.Read(gpioBase, ahb.SizeWord), Gap: 3},
		})

		Expect(results[1].AcceptedAt).To(Equal(uint64(3)))
		Expect(results[1].CompletedAt).To(Equal(uint64(4)))
	})

	It("should refuse misplaced registers", func() {
		Expect(func() {
			MakeBuilder().
				WithClock(h).
				WithRegister(Register{Name: "Odd", Offset: 0x2}).
				Build("Bad")
		}).To(Panic())
	})
})
