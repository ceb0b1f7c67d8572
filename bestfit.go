// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import (
	"errors"
	"sort"
	"unsafe"
)

// BestFitPool is a single free-list pool serviced by best fit. It carries
// no internal fragmentation beyond alignment padding, at the cost of an
// O(n) search per allocation and eager coalescing on free. Allocations
// larger than the pool's block size are routed directly to its Vendor and
// tracked in an overflow table, the same as SlubPool.
type BestFitPool[R Resource] struct {
	blockSize uintptr
	blocks    []uintptr
	freeMap   freeMap
	overflow  map[uintptr]overflowEntry
	vendor    Vendor[R]
}

// NewBestFitPool returns a BestFitPool that carves blockSize-byte,
// blockSize-aligned blocks from vendor as needed. blockSize must be a
// power of two.
func NewBestFitPool[R Resource](vendor Vendor[R], blockSize uintptr) (*BestFitPool[R], error) {
	if !isPowerOfTwo(blockSize) {
		return nil, errors.New("crystalmem: best-fit block size must be a nonzero power of two")
	}
	return &BestFitPool[R]{
		blockSize: blockSize,
		overflow:  make(map[uintptr]overflowEntry),
		vendor:    vendor,
	}, nil
}

func (p *BestFitPool[R]) alloc(size, align uintptr) unsafe.Pointer {
	if size > p.blockSize {
		ptr := p.vendor.Alloc(size, align)
		if ptr != nil {
			p.overflow[uintptr(ptr)] = overflowEntry{size: size, align: align}
		}
		return ptr
	}
	if addr, ok := p.freeMap.alloc(size, align); ok {
		return unsafe.Pointer(addr)
	}
	return p.appendBlock(size, align)
}

// appendBlock acquires a fresh block-sized region from the Vendor,
// services the current request directly from its start, and registers
// whatever the block has left over as a new free entry.
func (p *BestFitPool[R]) appendBlock(size, align uintptr) unsafe.Pointer {
	base := p.vendor.Alloc(p.blockSize, p.blockSize)
	if base == nil {
		return nil
	}
	baseAddr := uintptr(base)
	p.blocks = append(p.blocks, baseAddr)

	alignedStart := roundUp(baseAddr, align)
	leftPad := alignedStart - baseAddr
	if leftPad > 0 {
		p.freeMap.insert(freeMapEntry{addr: baseAddr, size: leftPad})
	}
	used := leftPad + size
	if used < p.blockSize {
		p.freeMap.insert(freeMapEntry{addr: alignedStart + size, size: p.blockSize - used})
	}
	return unsafe.Pointer(alignedStart)
}

func (p *BestFitPool[R]) dealloc(ptr unsafe.Pointer, size, align uintptr) {
	if ptr == nil {
		return
	}
	_ = align
	if entry, ok := p.overflow[uintptr(ptr)]; ok {
		delete(p.overflow, uintptr(ptr))
		p.vendor.Dealloc(ptr, entry.size, entry.align)
		return
	}
	p.freeMap.free(uintptr(ptr), size)
}

// Clear returns every block and every oversize allocation back to the
// pool's Vendor. The pool is left empty but usable.
func (p *BestFitPool[R]) Clear() {
	for _, addr := range p.blocks {
		p.vendor.Dealloc(unsafe.Pointer(addr), p.blockSize, p.blockSize)
	}
	p.blocks = nil
	p.freeMap.entries = nil
	for addr, e := range p.overflow {
		p.vendor.Dealloc(unsafe.Pointer(addr), e.size, e.align)
		delete(p.overflow, addr)
	}
}

// freeMapEntry is one disjoint free region, [addr, addr+size).
type freeMapEntry struct {
	addr uintptr
	size uintptr
}

// freeMap is an address-ordered set of disjoint free regions serviced by
// best fit. Ties are broken by the lexicographically smallest
// (total waste, left padding, right padding) tuple, so the choice between
// equally-wasteful candidates is deterministic.
type freeMap struct {
	entries []freeMapEntry // sorted by addr, pairwise disjoint and non-adjacent
}

func (m *freeMap) search(addr uintptr) int {
	return sort.Search(len(m.entries), func(i int) bool { return m.entries[i].addr >= addr })
}

func (m *freeMap) insert(e freeMapEntry) {
	i := m.search(e.addr)
	m.entries = append(m.entries, freeMapEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
}

func (m *freeMap) removeAt(i int) freeMapEntry {
	e := m.entries[i]
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return e
}

// alloc finds the best-fit free region for size bytes aligned to align,
// splits off whatever padding that leaves, and returns the aligned start
// address. ok is false if no free region can satisfy the request.
func (m *freeMap) alloc(size, align uintptr) (addr uintptr, ok bool) {
	best := -1
	var bestStart, bestLeft, bestRight, bestTotal uintptr

	for i, e := range m.entries {
		start := roundUp(e.addr, align)
		left := start - e.addr
		if start+size > e.addr+e.size {
			continue
		}
		right := (e.addr + e.size) - (start + size)
		total := left + right
		if best < 0 || total < bestTotal ||
			(total == bestTotal && left < bestLeft) ||
			(total == bestTotal && left == bestLeft && right < bestRight) {
			best, bestStart, bestLeft, bestRight, bestTotal = i, start, left, right, total
		}
	}
	if best < 0 {
		return 0, false
	}

	chosen := m.removeAt(best)
	if bestLeft > 0 {
		m.insert(freeMapEntry{addr: chosen.addr, size: bestLeft})
	}
	if bestRight > 0 {
		m.insert(freeMapEntry{addr: bestStart + size, size: bestRight})
	}
	return bestStart, true
}

// free returns [addr, addr+size) to the map, coalescing with an
// immediately adjacent left and/or right neighbor.
func (m *freeMap) free(addr, size uintptr) {
	newAddr, newSize := addr, size

	rightIdx := m.search(addr)
	if rightIdx < len(m.entries) && m.entries[rightIdx].addr == addr+size {
		r := m.removeAt(rightIdx)
		newSize += r.size
	}

	leftIdx := rightIdx - 1
	if leftIdx >= 0 && leftIdx < len(m.entries) {
		l := m.entries[leftIdx]
		if l.addr+l.size == newAddr {
			m.removeAt(leftIdx)
			newAddr = l.addr
			newSize += l.size
		}
	}

	m.insert(freeMapEntry{addr: newAddr, size: newSize})
}
