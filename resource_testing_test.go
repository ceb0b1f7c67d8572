// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem_test

import (
	"unsafe"

	"code.crystalcloud.dev/crystalmem"
)

// countingResource is a Go-heap-backed Resource that counts Alloc/Dealloc
// calls, for tests that need to observe how many times a pool falls through
// to its Vendor rather than servicing a request from its own bookkeeping.
type countingResource struct {
	allocs   int
	deallocs int
	live     map[uintptr][]byte
	alive    bool
}

func newCountingResource() *countingResource {
	return &countingResource{live: make(map[uintptr][]byte), alive: true}
}

func (r *countingResource) Alloc(size, align uintptr) unsafe.Pointer {
	r.allocs++
	b := crystalmem.AlignedMem(int(size), align)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	r.live[addr] = b
	return unsafe.Pointer(addr)
}

func (r *countingResource) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	r.deallocs++
	delete(r.live, uintptr(ptr))
}

func (r *countingResource) Close() error {
	r.alive = false
	return nil
}

func (r *countingResource) Alive() bool {
	return r.alive
}
