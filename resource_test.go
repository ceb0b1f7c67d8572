// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem_test

import (
	"testing"
	"unsafe"

	"code.crystalcloud.dev/crystalmem"
)

func TestOSResource_AllocAligned(t *testing.T) {
	r := crystalmem.NewOSResource()
	defer r.Close()

	for _, align := range []uintptr{8, 16, 64, 4096} {
		p := r.Alloc(32, align)
		if p == nil {
			t.Fatalf("Alloc(32, %d) returned nil", align)
		}
		if uintptr(p)%align != 0 {
			t.Errorf("Alloc(32, %d) = %p, not aligned", align, p)
		}
		r.Dealloc(p, 32, align)
	}
}

func TestOSResource_AllocZeroAlignDefaultsToCacheLine(t *testing.T) {
	r := crystalmem.NewOSResource()
	defer r.Close()

	p := r.Alloc(16, 0)
	if p == nil {
		t.Fatal("Alloc(16, 0) returned nil")
	}
	if uintptr(p)%crystalmem.CacheLineSize != 0 {
		t.Errorf("Alloc(16, 0) = %p, not aligned to CacheLineSize %d", p, crystalmem.CacheLineSize)
	}
	r.Dealloc(p, 16, 0)
}

func TestOSResource_NonOverlapping(t *testing.T) {
	r := crystalmem.NewOSResource()
	defer r.Close()

	const n = 64
	ptrs := make([]unsafe.Pointer, n)
	for i := range ptrs {
		ptrs[i] = r.Alloc(128, 16)
		if ptrs[i] == nil {
			t.Fatalf("Alloc failed at iteration %d", i)
		}
	}
	seen := make(map[uintptr]bool, n)
	for _, p := range ptrs {
		if seen[uintptr(p)] {
			t.Fatalf("duplicate address %p returned by Alloc", p)
		}
		seen[uintptr(p)] = true
	}
	for _, p := range ptrs {
		r.Dealloc(p, 128, 16)
	}
}

func TestOSResource_CloseIsIdempotent(t *testing.T) {
	r := crystalmem.NewOSResource()
	if !r.Alive() {
		t.Fatal("fresh OSResource reports not alive")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first Close() returned %v", err)
	}
	if r.Alive() {
		t.Fatal("OSResource still reports alive after Close()")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() returned %v", err)
	}
}
