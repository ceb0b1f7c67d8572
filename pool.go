// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "unsafe"

// Pool is the concept every CrystalMem pool satisfies: a byte-oriented
// allocator that DiscreteAlloc/ContinuousAlloc/New/Del build typed
// operations on top of. It is intentionally unexported at the method
// level — SlubPool and BestFitPool are the only two implementations this
// package provides, rather than an open extension point.
type Pool interface {
	comparable

	alloc(size, align uintptr) unsafe.Pointer
	dealloc(ptr unsafe.Pointer, size, align uintptr)
	Clear()
}

// DiscreteAlloc returns storage for a single T from p.
func DiscreteAlloc[T any, P Pool](p P) *T {
	var zero T
	return (*T)(p.alloc(unsafe.Sizeof(zero), unsafe.Alignof(zero)))
}

// DiscreteDealloc returns storage for a single T previously obtained from
// DiscreteAlloc.
func DiscreteDealloc[T any, P Pool](p P, ptr *T) {
	var zero T
	p.dealloc(unsafe.Pointer(ptr), unsafe.Sizeof(zero), unsafe.Alignof(zero))
}

// ContinuousAlloc returns storage for n contiguous values of T from p.
func ContinuousAlloc[T any, P Pool](p P, n int) *T {
	var zero T
	size, align := continuousSizeAlign(zero, n)
	return (*T)(p.alloc(size, align))
}

// ContinuousDealloc returns storage for n contiguous values of T
// previously obtained from ContinuousAlloc.
func ContinuousDealloc[T any, P Pool](p P, ptr *T, n int) {
	var zero T
	size, align := continuousSizeAlign(zero, n)
	p.dealloc(unsafe.Pointer(ptr), size, align)
}

func continuousSizeAlign[T any](zero T, n int) (size, align uintptr) {
	align = unsafe.Alignof(zero)
	if n <= 0 {
		return align, align
	}
	return unsafe.Sizeof(zero) * uintptr(n), align
}

// New allocates storage for a T from p and copies v into it, returning nil
// on out-of-memory.
func New[T any, P Pool](p P, v T) *T {
	ptr := DiscreteAlloc[T](p)
	if ptr == nil {
		return nil
	}
	*ptr = v
	return ptr
}

// Del destroys the value at ptr and returns its storage to p. Del(nil) is
// a no-op.
func Del[T any, P Pool](p P, ptr *T) {
	if ptr == nil {
		return
	}
	var zero T
	*ptr = zero
	DiscreteDealloc[T](p, ptr)
}
