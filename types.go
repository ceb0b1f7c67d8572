// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

import "code.crystalcloud.dev/crystalmem/internal"

// PageSize is the OS memory page size used to round up OSResource
// allocations to whole pages.
var PageSize uintptr = 4096

// CacheLineSize is the CPU L1 cache line size for the current
// architecture, detected at compile time. OSResource uses it as the
// default alignment when a caller passes align == 0, so pool blocks start
// on a cache-line boundary by default instead of an arbitrary one.
const CacheLineSize = internal.CacheLineSize

// SetPageSize updates the package-level page size used by OSResource.
func SetPageSize(size int) {
	PageSize = uintptr(size)
}

// noCopy is a sentinel used to prevent copying of move-only types.
// OSResource embeds this; go vet's copylocks check flags an accidental copy
// of an OSResource the same way it flags a copied sync.Mutex.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
