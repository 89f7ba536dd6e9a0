package memory

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	It("should read and write in a single unit", func() {
		storage := NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, err := storage.Read(0, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from untouched units", func() {
		storage := NewStorage(1 << 20)

		res, err := storage.Read(0x8000, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0}))
	})

	It("should refuse accesses beyond the capacity", func() {
		storage := NewStorage(4096)

		Expect(storage.Write(4095, []byte{1, 2})).To(MatchError(ErrBeyondCapacity))

		_, err := storage.Read(4097, 1)
		Expect(err).To(MatchError(ErrBeyondCapacity))
	})
})
