// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "unsafe"

// Vendor is a cheap, copyable, non-owning handle to a Resource. Unlike
// Resource, a Vendor carries no lifetime responsibility: it may be copied
// freely and compared for equality, and it must not outlive the Resource
// it points at.
type Vendor[R Resource] struct {
	resource R
}

// NewVendor returns a Vendor referencing resource. resource must outlive
// every Vendor built from it.
func NewVendor[R Resource](resource R) Vendor[R] {
	return Vendor[R]{resource: resource}
}

// Alloc forwards to the underlying Resource.
func (v Vendor[R]) Alloc(size, align uintptr) unsafe.Pointer {
	return v.resource.Alloc(size, align)
}

// Dealloc forwards to the underlying Resource.
func (v Vendor[R]) Dealloc(ptr unsafe.Pointer, size, align uintptr) {
	v.resource.Dealloc(ptr, size, align)
}

// Equal reports whether v and other reference the same Resource instance.
func (v Vendor[R]) Equal(other Vendor[R]) bool {
	return v.resource == other.resource
}
