// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"unsafe"
)

// Deferred is the structural contract for concrete deferred computations.
// PollDeferred is non-blocking: it returns the resolved value with a nil
// error, or iox.ErrWouldBlock while the computation is suspended.
// Once resolved, a computation must not be polled again (the driver's
// responsibility, not enforced here).
//
// Computations with failure semantics should resolve to a sum type such
// as kont.Either rather than returning their own errors through the
// suspension channel.
type Deferred[T any] interface {
	PollDeferred() (T, error)
}

// DeferredPtr constrains P to a pointer to F whose pointee polls as a
// Deferred. Allocators move F by value into pinned heap storage and poll
// through the pointer, so the contract must be satisfied by *F.
type DeferredPtr[F, T any] interface {
	*F
	Deferred[T]
}

// Finalizer is implemented by computations that hold external resources.
// Finalize runs exactly once when the owning future is dropped, whether
// or not the computation resolved.
type Finalizer interface {
	Finalize()
}

// Future is a type-erased handle to a heap-backed deferred computation.
// The concrete computation type is hidden behind a manually constructed
// dispatch pair: poll advances the payload in place, drop finalizes it.
//
// The payload lives at a fixed heap address for the whole life of the
// future; moving or copying the Future value never moves the payload.
// Exactly one copy of a Future may be polled and dropped: the handle is
// affine, and Drop consumes it.
type Future[T any] struct {
	ptr  unsafe.Pointer
	poll func(unsafe.Pointer) (T, error)
	drop func(unsafe.Pointer)
}

// NewFuture assembles a future from a raw payload pointer and a dispatch
// pair. Low-level extension point: [Box] and [Allocate] are the intended
// entry points. Callers must guarantee that poll and drop are valid for
// ptr, that the payload never moves while the future is live, and that
// drop releases the payload exactly once.
func NewFuture[T any](ptr unsafe.Pointer, poll func(unsafe.Pointer) (T, error), drop func(unsafe.Pointer)) Future[T] {
	return Future[T]{ptr: ptr, poll: poll, drop: drop}
}

// Poll advances the computation one step.
// Returns (value, nil) on resolution, or (zero, iox.ErrWouldBlock) while
// suspended. Panics if the future has been dropped.
func (f *Future[T]) Poll() (T, error) {
	if f.ptr == nil {
		panic("dfut: future polled after drop")
	}
	return f.poll(f.ptr)
}

// Drop releases the payload deterministically: the payload's [Finalizer]
// (if any) runs, its storage is zeroed, and the backing allocation is
// returned to its owner. Valid at any point in the future's life,
// resolved or not; dropping an unresolved future abandons whatever
// suspension state exists. Panics on a second Drop.
func (f *Future[T]) Drop() {
	if f.ptr == nil {
		panic("dfut: future dropped twice")
	}
	p := f.ptr
	f.ptr = nil
	f.drop(p)
}

// finalize runs the payload's Finalizer, if implemented, then zeroes the
// storage in place so reclaimed slots never pin stale references.
func finalize[F any](p *F) {
	if fin, ok := any(p).(Finalizer); ok {
		fin.Finalize()
	}
	var zero F
	*p = zero
}
