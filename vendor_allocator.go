// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "unsafe"

// VendorAllocator adapts a Vendor to the typed allocate(n)/deallocate(p, n)
// shape a generic container expects. It forwards every request to the
// Vendor's Resource, scaled by sizeof(T) and aligned to alignof(T).
type VendorAllocator[T any, R Resource] struct {
	vendor Vendor[R]
}

// NewVendorAllocator returns a VendorAllocator over vendor.
func NewVendorAllocator[T any, R Resource](vendor Vendor[R]) VendorAllocator[T, R] {
	return VendorAllocator[T, R]{vendor: vendor}
}

// Allocate returns storage for n values of T, or nil on out-of-memory.
// Allocate(0) returns a non-nil placeholder pointer that must not be
// dereferenced.
func (a VendorAllocator[T, R]) Allocate(n int) *T {
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(n)
	align := unsafe.Alignof(zero)
	if n == 0 {
		size = align
	}
	p := a.vendor.Alloc(size, align)
	if p == nil {
		return nil
	}
	return (*T)(p)
}

// Deallocate returns storage for n values of T previously obtained from
// Allocate. Deallocate(nil, 0) is a no-op.
func (a VendorAllocator[T, R]) Deallocate(p *T, n int) {
	if p == nil {
		return
	}
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(n)
	align := unsafe.Alignof(zero)
	if n == 0 {
		size = align
	}
	a.vendor.Dealloc(unsafe.Pointer(p), size, align)
}

// Rebind returns a VendorAllocator for a different element type U backed
// by the same Vendor, mirroring the cross-type rebinding constructor every
// standard-library-style allocator adapter needs to service node types
// that differ from the container's value type (e.g. a tree node wrapping a
// T).
func Rebind[U, T any, R Resource](a VendorAllocator[T, R]) VendorAllocator[U, R] {
	return VendorAllocator[U, R]{vendor: a.vendor}
}

// Equal reports whether a and other are backed by the same Vendor.
func (a VendorAllocator[T, R]) Equal(other VendorAllocator[T, R]) bool {
	return a.vendor.Equal(other.vendor)
}
