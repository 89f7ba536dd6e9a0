package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// BufferInfo exposes the occupancy of a buffer regardless of its element
// type. Monitors use it to find full buffers.
type BufferInfo interface {
	Named
	Capacity() int
	Size() int
}

// A Buffer is a bounded fifo queue.
type Buffer[T any] interface {
	BufferInfo
	Hookable

	CanPush() bool
	Push(e T)
	Pop() (T, bool)
	Peek() (T, bool)

	// At returns the i-th element counted from the head.
	At(i int) T

	// Clear removes all elements in the buffer.
	Clear()
}

// NewBuffer creates a default buffer object.
func NewBuffer[T any](name string, capacity int) Buffer[T] {
	NameMustBeValid(name)

	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &bufferImpl[T]{
		name:     name,
		capacity: capacity,
		elements: make([]T, 0, capacity),
	}
}

type bufferImpl[T any] struct {
	HookableBase

	name     string
	capacity int
	elements []T
}

// Name returns the name of the buffer.
func (b *bufferImpl[T]) Name() string {
	return b.name
}

func (b *bufferImpl[T]) CanPush() bool {
	return len(b.elements) < b.capacity
}

func (b *bufferImpl[T]) Push(e T) {
	if len(b.elements) >= b.capacity {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.elements = append(b.elements, e)

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   e,
		})
	}
}

func (b *bufferImpl[T]) Pop() (T, bool) {
	var zero T
	if len(b.elements) == 0 {
		return zero, false
	}

	e := b.elements[0]
	copy(b.elements, b.elements[1:])
	b.elements[len(b.elements)-1] = zero
	b.elements = b.elements[:len(b.elements)-1]

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   e,
		})
	}

	return e, true
}

func (b *bufferImpl[T]) Peek() (T, bool) {
	if len(b.elements) == 0 {
		var zero T
		return zero, false
	}

	return b.elements[0], true
}

func (b *bufferImpl[T]) At(i int) T {
	return b.elements[i]
}

func (b *bufferImpl[T]) Capacity() int {
	return b.capacity
}

func (b *bufferImpl[T]) Size() int {
	return len(b.elements)
}

func (b *bufferImpl[T]) Clear() {
	b.elements = b.elements[:0]
}
