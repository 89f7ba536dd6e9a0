package memory

import (
	"context"

	"github.com/sarchlab/ahbsim/ahb"
	"github.com/sarchlab/ahbsim/ahb/master"
	"github.com/sarchlab/ahbsim/ahb/slave"
	"github.com/sarchlab/ahbsim/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Memory", func() {
	var m *Memory

	BeforeEach(func() {
		m = MakeBuilder().
			WithBase(0x2000_0000).
			WithCapacity(0x1000).
			WithReadWaitStates(1).
			WithWriteWaitStates(2).
			Build("SRAM")
	})

	It("should keep bytes in little endian order", func() {
		m.Write(ahb.Write(0x2000_0010, ahb.SizeWord), 0x44332211)

		buf := make([]byte, 4)
		Expect(m.ReadMemory(0x2000_0010, buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{0x11, 0x22, 0x33, 0x44}))

		Expect(m.Read(ahb.Read(0x2000_0012, ahb.SizeHalfword))).
			To(Equal(ahb.Data(0x4433)))
		Expect(m.Read(ahb.Read(0x2000_0011, ahb.SizeByte))).
			To(Equal(ahb.Data(0x22)))
	})

	It("should only touch the bytes of narrow writes", func() {
		Expect(m.WriteMemory(0x2000_0000, []byte{1, 2, 3, 4})).To(Succeed())

		m.Write(ahb.Write(0x2000_0001, ahb.SizeByte), 0xaaff)

		Expect(m.Read(ahb.Read(0x2000_0000, ahb.SizeWord))).
			To(Equal(ahb.Data(0x0403ff01)))
	})

	It("should tell the wait states", func() {
		n, err := m.PreRead(ahb.Read(0x2000_0000, ahb.SizeWord))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))

		n, err = m.PreWrite(ahb.Write(0x2000_0000, ahb.SizeWord))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("should refuse transfers outside of its range", func() {
		_, err := m.PreRead(ahb.Read(0x2000_0ffe, ahb.SizeWord))
		Expect(err).To(MatchError(ErrUnmapped))

		var addrErr *AddressError
		Expect(err).To(BeAssignableToTypeOf(addrErr))
	})

	It("should refuse bus writes if read only", func() {
		rom := MakeBuilder().
			WithReadOnly().
			WithImage([]byte{0xef, 0xbe}).
			Build("ROM")

		_, err := rom.PreWrite(ahb.Write(0, ahb.SizeByte))
		Expect(err).To(MatchError(ErrReadOnly))
		Expect(rom.Read(ahb.Read(0, ahb.SizeHalfword))).To(Equal(ahb.Data(0xbeef)))
	})

	It("should refuse host accesses past its end", func() {
		err := m.WriteMemory(0x2000_0ffe, []byte{1, 2, 3})
		Expect(err).To(MatchError(ErrUnmapped))
	})

	It("should refuse to be built past the end of the bus", func() {
		Expect(func() {
			MakeBuilder().WithBase(0xffff_f000).WithCapacity(0x2000).Build("Big")
		}).To(Panic())
	})

	It("should serve a master through a faking driver", func() {
		h := sim.MakeHarnessBuilder().Build()

		cpu := master.MakeBuilder().
			WithClock(h).
			WithScript([]master.Access{
				{Meta: ahb.Write(0x2000_0020, ahb.SizeWord), Data: 0xcafef00d},
				{Meta: ahb.Read(0x2000_0022, ahb.SizeHalfword)},
			}).
			BuildScripted("CPU")
		driver := slave.MakeBuilder().WithClock(h).BuildFaking("SRAM", m)
		cpu.Driver().ConnectSlave(driver)

		h.Register(cpu)
		h.Register(driver)

		Expect(h.Run(context.Background())).To(MatchError(sim.ErrNoProgress))

		results := cpu.Results()
		Expect(results[0].CompletedAt).To(Equal(uint64(3)))
		Expect(results[1].Data).To(Equal(ahb.Data(0xcafe)))
		Expect(results[1].CompletedAt).To(Equal(uint64(5)))
	})
})
