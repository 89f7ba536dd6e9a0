package peripheral

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Register", func() {
	var r *Register

	BeforeEach(func() {
		r = &Register{
			Name:          "Ctrl",
			Reset:         0x0000_0f00,
			ReservedMask:  0xff00_0000,
			ReadOnlyMask:  0x0000_ff00,
			WriteOnlyMask: 0x0000_0001,
		}
		r.ResetValue()
	})

	It("should keep read-only and reserved bits on bus writes", func() {
		old := r.BusWrite(0xffff_ffff)

		Expect(old).To(Equal(uint32(0x0000_0f00)))
		Expect(r.Value()).To(Equal(uint32(0x00ff_0fff)))
	})

	It("should hide write-only bits from bus reads", func() {
		r.BusWrite(0x0000_0001)

		Expect(r.Value() & 1).To(Equal(uint32(1)))
		Expect(r.BusRead() & 1).To(BeZero())
	})

	It("should let the peripheral change read-only bits", func() {
		r.SetField(8, 8, 0xab)

		Expect(r.Field(8, 8)).To(Equal(uint32(0xab)))
		Expect(r.BusRead()).To(Equal(uint32(0x0000_ab00)))
	})

	It("should never store reserved bits", func() {
		r.Set(0xffff_ffff)

		Expect(r.Value()).To(Equal(uint32(0x00ff_ffff)))
	})
})
