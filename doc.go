// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package crystalmem provides embeddable memory pools that sit between a
// host program and a low-level memory resource (OS heap, file mapping,
// fixed region, …) and hand out typed memory at substantially lower
// per-request cost than the resource itself.
//
// # Layers
//
// The package is layered bottom-up:
//
//	Resource  -- owns the lifetime of the raw backing store
//	Vendor    -- cheap, copyable, non-owning handle to a Resource
//	Pool      -- turns coarse Vendor memory into fine typed allocations
//	Allocator -- typed adapter over a Pool for use by containers
//
// # Pools
//
// Two interchangeable pooling strategies are provided:
//
//   - SlubPool: a size-classed slab allocator. Allocations are serviced from
//     fixed-size slots grouped into buckets by slot size; O(1) alloc/free on
//     the fast path, at the cost of internal fragmentation up to one slot.
//   - BestFitPool: a single free-list pool serviced by best fit. No internal
//     fragmentation beyond alignment padding, at the cost of an O(n) search
//     and eager coalescing on free.
//
// Both pools route oversize allocations directly to the underlying Vendor
// and track them in an overflow table, so oversize requests never corrupt
// the pool's own bookkeeping. For SlubPool a request is oversize when it is
// larger than the largest configured slot size; for BestFitPool, when it is
// larger than the block size.
//
// # Usage
//
//	resource := crystalmem.NewOSResource()
//	vendor := crystalmem.NewVendor(resource)
//	pool, err := crystalmem.NewSlubPool(vendor, 4096, []uintptr{16, 32, 64, 128})
//	if err != nil {
//	    // bad pool configuration
//	}
//	p := crystalmem.New(pool, MyStruct{})
//	crystalmem.Del(pool, p)
//
// # Allocator Adapters
//
// MonoAllocator and DynAllocator adapt a Pool to the shape a generic
// container expects: MonoAllocator services single-object node containers
// (allocate(n) with n != 1 returns nil, the null sentinel for a misused
// adapter); DynAllocator services array-capable contiguous containers and
// forwards any n.
//
// # Thread Safety
//
// Pools are single-owner data structures: no internal synchronization is
// performed, and a Pool, Vendor, or Resource must not be used from more
// than one goroutine without external locking. This is a deliberate
// non-goal, not an oversight.
//
// # Dependencies
//
// crystalmem depends on:
//   - golang.org/x/sys/unix: mmap/munmap-backed OSResource on Unix targets.
package crystalmem
