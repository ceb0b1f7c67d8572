// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package crystalmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// OSResource is a Resource backed by anonymous memory-mapped pages. Each
// allocation is rounded up to a whole number of OS pages and, when align
// exceeds the page size, over-mapped so the requested alignment can be
// carved out of the middle of the mapping.
type OSResource struct {
	noCopy
	alive   bool
	regions map[uintptr][]byte // caller-visible pointer -> the mmap'd region backing it
}

// NewOSResource returns a ready-to-use OSResource.
func NewOSResource() *OSResource {
	return &OSResource{alive: true, regions: make(map[uintptr][]byte)}
}

func (r *OSResource) Alloc(size, align uintptr) unsafe.Pointer {
	if size == 0 {
		size = 1
	}
	if align == 0 {
		align = CacheLineSize
	}
	page := PageSize
	mapLen := roundUp(size, page)
	if align > page {
		mapLen += align - page
	}
	mem, err := unix.Mmap(-1, 0, int(mapLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	aligned := roundUp(base, align)
	ptr := unsafe.Pointer(aligned)
	r.regions[aligned] = mem
	return ptr
}

func (r *OSResource) Dealloc(ptr unsafe.Pointer, _, _ uintptr) {
	key := uintptr(ptr)
	mem, ok := r.regions[key]
	if !ok {
		return
	}
	delete(r.regions, key)
	_ = unix.Munmap(mem)
}

func (r *OSResource) Close() error {
	if !r.alive {
		return nil
	}
	for key, mem := range r.regions {
		if err := unix.Munmap(mem); err != nil {
			return err
		}
		delete(r.regions, key)
	}
	r.alive = false
	return nil
}

func (r *OSResource) Alive() bool {
	return r.alive
}
