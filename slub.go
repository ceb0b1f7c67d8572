// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import (
	"errors"
	"math"
	"sort"
	"unsafe"
)

// blockHeaderSize is the number of bytes every SlubPool block reserves at
// its start for the free-list head, before the slot area begins. A 32-bit
// free-list link lets slot sizes go as low as 4 bytes, instead of the
// 8 bytes a 64-bit link would force.
const blockHeaderSize = unsafe.Sizeof(uint32(0))

// slotFreeEnd is the sentinel free-list link marking "no more free
// slots", the all-ones terminator for a 32-bit index.
const slotFreeEnd = math.MaxUint32

// SlubPool is a size-classed slab allocator. Allocations are serviced from
// fixed-size slots grouped into buckets by slot size, giving O(1)
// alloc/free on the fast path at the cost of up to one slot of internal
// fragmentation. Allocations larger than any configured slot size, or
// larger than a block can hold, are routed directly to the pool's Vendor
// and tracked in an overflow table.
type SlubPool[R Resource] struct {
	blockSize uintptr
	slotSizes []uintptr
	buckets   []*slubBucket[R]
	overflow  map[uintptr]overflowEntry
	vendor    Vendor[R]
}

// NewSlubPool returns a SlubPool that carves blockSize-byte,
// blockSize-aligned blocks from vendor and services them through the
// given slot sizes. blockSize must be a power of two large enough to hold
// blockHeaderSize plus at least one slot of the largest size class.
// slotSizes must be strictly increasing and each at least 4 bytes (the
// width of a free-list link).
func NewSlubPool[R Resource](vendor Vendor[R], blockSize uintptr, slotSizes []uintptr) (*SlubPool[R], error) {
	if !isPowerOfTwo(blockSize) {
		return nil, errors.New("crystalmem: slub block size must be a power of two")
	}
	if len(slotSizes) == 0 {
		return nil, errors.New("crystalmem: slub pool needs at least one slot size")
	}
	for i, s := range slotSizes {
		if s < blockHeaderSize {
			return nil, errors.New("crystalmem: slub slot size must be at least 4 bytes")
		}
		if i > 0 && s <= slotSizes[i-1] {
			return nil, errors.New("crystalmem: slub slot sizes must be strictly increasing")
		}
	}
	largest := slotSizes[len(slotSizes)-1]
	if blockSize <= blockHeaderSize || (blockSize-blockHeaderSize) < largest {
		return nil, errors.New("crystalmem: slub block size too small for its largest slot size")
	}

	p := &SlubPool[R]{
		blockSize: blockSize,
		slotSizes: append([]uintptr(nil), slotSizes...),
		buckets:   make([]*slubBucket[R], len(slotSizes)),
		overflow:  make(map[uintptr]overflowEntry),
		vendor:    vendor,
	}
	for i, s := range p.slotSizes {
		p.buckets[i] = newSlubBucket(vendor, blockSize, s)
	}
	return p, nil
}

// bucketForSize returns the index of the smallest slot size able to hold
// size bytes, or -1 if no configured slot size qualifies.
func (p *SlubPool[R]) bucketForSize(size uintptr) int {
	i := sort.Search(len(p.slotSizes), func(i int) bool { return p.slotSizes[i] >= size })
	if i == len(p.slotSizes) {
		return -1
	}
	return i
}

func (p *SlubPool[R]) alloc(size, align uintptr) unsafe.Pointer {
	idx := p.bucketForSize(size)
	if idx < 0 {
		ptr := p.vendor.Alloc(size, align)
		if ptr != nil {
			p.overflow[uintptr(ptr)] = overflowEntry{size: size, align: align}
		}
		return ptr
	}
	return p.buckets[idx].allocSlot()
}

func (p *SlubPool[R]) dealloc(ptr unsafe.Pointer, size, align uintptr) {
	if ptr == nil {
		return
	}
	if entry, ok := p.overflow[uintptr(ptr)]; ok {
		delete(p.overflow, uintptr(ptr))
		p.vendor.Dealloc(ptr, entry.size, entry.align)
		return
	}
	idx := p.bucketForSize(size)
	if idx < 0 {
		return
	}
	p.buckets[idx].deallocSlot(ptr)
}

// Clear returns every block and every oversize allocation back to the
// pool's Vendor. The pool is left empty but usable.
func (p *SlubPool[R]) Clear() {
	for _, b := range p.buckets {
		b.clear()
	}
	for addr, e := range p.overflow {
		p.vendor.Dealloc(unsafe.Pointer(addr), e.size, e.align)
		delete(p.overflow, addr)
	}
}

// slubBlockMeta is the Go-managed bookkeeping for one block: which bucket
// it belongs to and where it sits in that bucket's doubly linked list.
// Kept as an ordinary Go struct, not placed inside the block's own raw
// bytes, so the garbage collector never has to trace pointers living in
// memory that may not even be on the Go heap (see DESIGN.md).
type slubBlockMeta struct {
	base       unsafe.Pointer
	next, prev *slubBlockMeta
}

// slubBucket owns every block sized to service one slot size. Blocks are
// kept in a doubly linked list. allocSlot only ever looks at the head: if
// the head is full it acquires a new block and puts it at the front, even
// when a block further down the list still has a free slot. deallocSlot
// moves the block that received the freed slot to the front.
type slubBucket[R Resource] struct {
	vendor    Vendor[R]
	blockSize uintptr
	slotSize  uintptr
	head      *slubBlockMeta
	byAddr    map[uintptr]*slubBlockMeta
}

func newSlubBucket[R Resource](vendor Vendor[R], blockSize, slotSize uintptr) *slubBucket[R] {
	return &slubBucket[R]{
		vendor:    vendor,
		blockSize: blockSize,
		slotSize:  slotSize,
		byAddr:    make(map[uintptr]*slubBlockMeta),
	}
}

func (b *slubBucket[R]) availableBlock() *slubBlockMeta {
	if b.head != nil && !slubBlockFull(b.head.base) {
		return b.head
	}
	base := newSlubBlockBytes(b.vendor, b.blockSize, b.slotSize)
	if base == nil {
		return nil
	}
	meta := &slubBlockMeta{base: base, next: b.head}
	if b.head != nil {
		b.head.prev = meta
	}
	b.head = meta
	b.byAddr[uintptr(base)] = meta
	return meta
}

func (b *slubBucket[R]) allocSlot() unsafe.Pointer {
	meta := b.availableBlock()
	if meta == nil {
		return nil
	}
	return slubBlockAllocSlot(meta.base, b.slotSize)
}

func (b *slubBucket[R]) deallocSlot(ptr unsafe.Pointer) {
	baseAddr := uintptr(ptr) &^ (b.blockSize - 1)
	meta, ok := b.byAddr[baseAddr]
	if !ok {
		return
	}
	slubBlockDeallocSlot(meta.base, b.slotSize, ptr)
	b.moveToFront(meta)
}

func (b *slubBucket[R]) moveToFront(meta *slubBlockMeta) {
	if meta == b.head {
		return
	}
	if meta.prev != nil {
		meta.prev.next = meta.next
	}
	if meta.next != nil {
		meta.next.prev = meta.prev
	}
	meta.prev = nil
	meta.next = b.head
	if b.head != nil {
		b.head.prev = meta
	}
	b.head = meta
}

func (b *slubBucket[R]) clear() {
	cur := b.head
	for cur != nil {
		next := cur.next
		b.vendor.Dealloc(cur.base, b.blockSize, b.blockSize)
		delete(b.byAddr, uintptr(cur.base))
		cur = next
	}
	b.head = nil
}

// --- block layout helpers ---
//
// A block is blockSize bytes, blockSize-aligned, laid out as:
//
//	[0:4) free_head (uint32, index of first free slot or slotFreeEnd)
//	[4:…) slots     (blockSlotCapacity(blockSize, slotSize) slots)
//
// A free slot's bytes are reinterpreted as a uint32 holding the index of
// the next free slot, or slotFreeEnd if it is the last one.

func blockSlotCapacity(blockSize, slotSize uintptr) uintptr {
	return (blockSize - blockHeaderSize) / slotSize
}

func slotAt(base unsafe.Pointer, i, slotSize uintptr) unsafe.Pointer {
	return unsafe.Add(base, blockHeaderSize+i*slotSize)
}

func blockFreeHead(base unsafe.Pointer) uint32 { return *(*uint32)(base) }
func setBlockFreeHead(base unsafe.Pointer, v uint32) {
	*(*uint32)(base) = v
}

func slotLink(slot unsafe.Pointer) uint32 { return *(*uint32)(slot) }
func setSlotLink(slot unsafe.Pointer, v uint32) {
	*(*uint32)(slot) = v
}

func slubBlockFull(base unsafe.Pointer) bool {
	return blockFreeHead(base) == slotFreeEnd
}

func newSlubBlockBytes[R Resource](vendor Vendor[R], blockSize, slotSize uintptr) unsafe.Pointer {
	base := vendor.Alloc(blockSize, blockSize)
	if base == nil {
		return nil
	}
	capacity := blockSlotCapacity(blockSize, slotSize)
	setBlockFreeHead(base, 0)
	for i := uintptr(0); i < capacity; i++ {
		link := uint32(i + 1)
		if i+1 == capacity {
			link = slotFreeEnd
		}
		setSlotLink(slotAt(base, i, slotSize), link)
	}
	return base
}

func slubBlockAllocSlot(base unsafe.Pointer, slotSize uintptr) unsafe.Pointer {
	fh := blockFreeHead(base)
	if fh == slotFreeEnd {
		return nil
	}
	slot := slotAt(base, uintptr(fh), slotSize)
	setBlockFreeHead(base, slotLink(slot))
	return slot
}

func slubBlockDeallocSlot(base unsafe.Pointer, slotSize uintptr, slot unsafe.Pointer) {
	idx := (uintptr(slot) - uintptr(base) - blockHeaderSize) / slotSize
	setSlotLink(slot, blockFreeHead(base))
	setBlockFreeHead(base, uint32(idx))
}
