// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "unsafe"

// Resource is the bottom of the CrystalMem stack: the owner of a raw
// backing store. A Resource is move-only in spirit — Go has no move
// semantics, so callers must simply not share a live Resource between two
// owners; embed noCopy (as OSResource does) so go vet flags an accidental
// struct copy.
//
// Alloc returns nil on out-of-memory; it never panics. Dealloc must be
// called with the same size and align used to obtain ptr from Alloc — the
// contract is undefined behavior otherwise, and CrystalMem does not detect
// the violation.
type Resource interface {
	comparable

	// Alloc returns a region of at least size bytes aligned to align, or
	// nil if the resource cannot satisfy the request.
	Alloc(size, align uintptr) unsafe.Pointer
	// Dealloc returns memory previously obtained from Alloc with the same
	// size and align.
	Dealloc(ptr unsafe.Pointer, size, align uintptr)
	// Close releases the resource. Close is idempotent: calling it on an
	// already-closed Resource is a no-op that returns nil.
	Close() error
	// Alive reports whether the resource has not yet been closed.
	Alive() bool
}

// overflowEntry records the size and alignment of an allocation that a
// Pool routed directly to its Vendor instead of servicing from its own
// bookkeeping structures.
type overflowEntry struct {
	size  uintptr
	align uintptr
}

// roundUp rounds n up to the nearest multiple of m. m must be a power of
// two.
func roundUp(n, m uintptr) uintptr {
	return (n + m - 1) &^ (m - 1)
}

// isPowerOfTwo reports whether n is a nonzero power of two.
func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}
