// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crystalmem

// MonoAllocator adapts a Pool to the single-object allocate(n)/
// deallocate(p, n) shape a node-based container (list, tree) expects.
// Misuse — requesting anything other than exactly one object — is a
// contract violation the adapter is required to catch: Allocate returns
// the null sentinel instead of the undefined behavior most other
// contract violations in this package permit.
type MonoAllocator[T any, P Pool] struct {
	pool P
}

// NewMonoAllocator returns a MonoAllocator over pool.
func NewMonoAllocator[T any, P Pool](pool P) MonoAllocator[T, P] {
	return MonoAllocator[T, P]{pool: pool}
}

// Allocate returns storage for a single T. It returns nil if n != 1.
func (a MonoAllocator[T, P]) Allocate(n int) *T {
	if n != 1 {
		return nil
	}
	return DiscreteAlloc[T](a.pool)
}

// Deallocate returns storage for a single T previously obtained from
// Allocate. It is a no-op if n != 1.
func (a MonoAllocator[T, P]) Deallocate(ptr *T, n int) {
	if n != 1 {
		return
	}
	DiscreteDealloc[T](a.pool, ptr)
}

// Equal reports whether a and other are backed by the same Pool.
func (a MonoAllocator[T, P]) Equal(other MonoAllocator[T, P]) bool {
	return a.pool == other.pool
}

// RebindMono returns a MonoAllocator for a different element type U backed
// by the same Pool as a, mirroring Rebind for VendorAllocator.
func RebindMono[U, T any, P Pool](a MonoAllocator[T, P]) MonoAllocator[U, P] {
	return MonoAllocator[U, P]{pool: a.pool}
}

// DynAllocator adapts a Pool to the array-capable allocate(n)/
// deallocate(p, n) shape a contiguous container (vector, ring buffer)
// expects. Unlike MonoAllocator it forwards any n, including zero.
type DynAllocator[T any, P Pool] struct {
	pool P
}

// NewDynAllocator returns a DynAllocator over pool.
func NewDynAllocator[T any, P Pool](pool P) DynAllocator[T, P] {
	return DynAllocator[T, P]{pool: pool}
}

// Allocate returns storage for n contiguous values of T.
func (a DynAllocator[T, P]) Allocate(n int) *T {
	return ContinuousAlloc[T](a.pool, n)
}

// Deallocate returns storage for n contiguous values of T previously
// obtained from Allocate.
func (a DynAllocator[T, P]) Deallocate(ptr *T, n int) {
	ContinuousDealloc[T](a.pool, ptr, n)
}

// Equal reports whether a and other are backed by the same Pool.
func (a DynAllocator[T, P]) Equal(other DynAllocator[T, P]) bool {
	return a.pool == other.pool
}

// RebindDyn returns a DynAllocator for a different element type U backed by
// the same Pool as a, mirroring Rebind for VendorAllocator.
func RebindDyn[U, T any, P Pool](a DynAllocator[T, P]) DynAllocator[U, P] {
	return DynAllocator[U, P]{pool: a.pool}
}
