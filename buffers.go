// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "unsafe"

// AlignedMem returns a byte slice with the specified size and starting
// address aligned to align. It is used by the non-Unix OSResource
// fallback, which has no real mmap to hand back page-aligned memory and
// must instead over-allocate a Go slice and mask to the requested
// boundary.
//
// The returned slice shares underlying memory with a larger allocation;
// do not assume len(result) == cap(result).
func AlignedMem(size int, align uintptr) []byte {
	p := make([]byte, uintptr(size)+align-1)
	base := unsafe.Pointer(unsafe.SliceData(p))
	offset := roundUp(uintptr(base), align) - uintptr(base)
	return unsafe.Slice((*byte)(unsafe.Add(base, offset)), size)
}
