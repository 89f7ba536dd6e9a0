package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BufferImpl", func() {
	var (
		buf Buffer[int]
	)

	BeforeEach(func() {
		buf = NewBuffer[int]("Buf", 2)
	})

	It("should allow push and pop", func() {
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(buf.At(1)).To(Equal(2))
		Expect(func() {
			buf.Push(3)
		}).To(Panic())

		e, ok := buf.Peek()
		Expect(ok).To(BeTrue())
		Expect(e).To(Equal(1))

		e, _ = buf.Pop()
		Expect(e).To(Equal(1))
		Expect(buf.Size()).To(Equal(1))

		e, _ = buf.Pop()
		Expect(e).To(Equal(2))
		Expect(buf.Size()).To(Equal(0))

		_, ok = buf.Peek()
		Expect(ok).To(BeFalse())
		_, ok = buf.Pop()
		Expect(ok).To(BeFalse())
	})

	It("should clear", func() {
		buf.Push(2)
		Expect(buf.Size()).To(Equal(1))

		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
	})

	It("should invoke hooks on push and pop", func() {
		var positions []*HookPos
		buf.AcceptHook(HookFunc(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		buf.Push(7)
		buf.Pop()

		Expect(positions).To(Equal([]*HookPos{HookPosBufPush, HookPosBufPop}))
	})
})
