// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !unix

package crystalmem

import "unsafe"

// OSResource is a Resource backed by the Go heap, using AlignedMem to
// satisfy alignment. There is no real "unmap": Dealloc and Close simply
// drop the bookkeeping reference so the garbage collector can reclaim the
// backing array.
type OSResource struct {
	noCopy
	alive  bool
	blocks map[uintptr][]byte
}

// NewOSResource returns a ready-to-use OSResource.
func NewOSResource() *OSResource {
	return &OSResource{alive: true, blocks: make(map[uintptr][]byte)}
}

func (r *OSResource) Alloc(size, align uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = CacheLineSize
	}
	p := AlignedMem(int(size), align)
	aligned := uintptr(unsafe.Pointer(unsafe.SliceData(p)))
	r.blocks[aligned] = p
	return unsafe.Pointer(aligned)
}

func (r *OSResource) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	delete(r.blocks, uintptr(ptr))
}

func (r *OSResource) Close() error {
	if !r.alive {
		return nil
	}
	clear(r.blocks)
	r.alive = false
	return nil
}

func (r *OSResource) Alive() bool {
	return r.alive
}
