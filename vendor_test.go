// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem_test

import (
	"testing"
	"unsafe"

	"code.crystalcloud.dev/crystalmem"
)

func TestVendor_AllocDeallocRoundTrip(t *testing.T) {
	r := newCountingResource()
	v := crystalmem.NewVendor[*countingResource](r)

	p := v.Alloc(64, 8)
	if p == nil {
		t.Fatal("Vendor.Alloc returned nil")
	}
	if r.allocs != 1 {
		t.Fatalf("resource allocs = %d, want 1", r.allocs)
	}
	v.Dealloc(p, 64, 8)
	if r.deallocs != 1 {
		t.Fatalf("resource deallocs = %d, want 1", r.deallocs)
	}
}

func TestVendor_Equal(t *testing.T) {
	r1 := newCountingResource()
	r2 := newCountingResource()
	v1 := crystalmem.NewVendor[*countingResource](r1)
	v1b := crystalmem.NewVendor[*countingResource](r1)
	v2 := crystalmem.NewVendor[*countingResource](r2)

	if !v1.Equal(v1b) {
		t.Error("vendors over the same resource instance should be equal")
	}
	if v1.Equal(v2) {
		t.Error("vendors over different resource instances should not be equal")
	}
}

func TestVendorAllocator_ScalesByTypeSize(t *testing.T) {
	r := newCountingResource()
	v := crystalmem.NewVendor[*countingResource](r)
	a := crystalmem.NewVendorAllocator[[16]byte](v)

	p := a.Allocate(4)
	if p == nil {
		t.Fatal("Allocate(4) returned nil")
	}
	if got := len(r.live[uintptr(unsafe.Pointer(p))]); got != 4*16 {
		t.Fatalf("Allocate(4) of [16]byte requested %d bytes, want %d", got, 4*16)
	}
	a.Deallocate(p, 4)
	if r.allocs != 1 || r.deallocs != 1 {
		t.Fatalf("allocs=%d deallocs=%d, want 1/1", r.allocs, r.deallocs)
	}
}

func TestVendorAllocator_DeallocateNilIsNoop(t *testing.T) {
	r := newCountingResource()
	v := crystalmem.NewVendor[*countingResource](r)
	a := crystalmem.NewVendorAllocator[int](v)

	a.Deallocate(nil, 0)
	if r.deallocs != 0 {
		t.Fatalf("deallocs = %d, want 0", r.deallocs)
	}
}

func TestVendorAllocator_Rebind(t *testing.T) {
	r := newCountingResource()
	v := crystalmem.NewVendor[*countingResource](r)
	a := crystalmem.NewVendorAllocator[int](v)
	rebound := crystalmem.Rebind[int64](a)

	p := rebound.Allocate(1)
	if p == nil {
		t.Fatal("Allocate after Rebind returned nil")
	}
	rebound.Deallocate(p, 1)
}

func TestVendorAllocator_Equal(t *testing.T) {
	r := newCountingResource()
	v := crystalmem.NewVendor[*countingResource](r)
	a1 := crystalmem.NewVendorAllocator[int](v)
	a2 := crystalmem.NewVendorAllocator[int](v)

	if !a1.Equal(a2) {
		t.Error("allocators backed by the same vendor should be equal")
	}
}
