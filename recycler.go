// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"reflect"
	"unsafe"

	"code.hybscloud.com/atomix"
)

// header sits in front of the payload region of a recyclable slot.
// While the slot is alive its refcount is 1 (only the allocator holds it)
// or 2 (the allocator plus one outstanding future). Any other observed
// value during the reuse transition is an invariant violation.
type header struct {
	// refcount counts the active references to this slot.
	// At most 2 can exist: the outstanding future and the Recycler.
	refcount atomix.Uint32
	// capacity is the recorded size of the payload region in bytes.
	capacity uintptr
	// rtype is the concrete payload type the slot was shaped for.
	// Storage is only reinterpreted under an identical pointer map,
	// so reuse additionally requires type identity, not just size.
	rtype reflect.Type
}

// slot is the single-allocation layout of a recyclable future:
// header in front, payload storage directly behind it. The compiler
// owns the layout, so payload alignment is guaranteed rather than
// assumed.
type slot[F any] struct {
	header
	payload F
}

// reclaim poisons the header once the refcount has reached zero.
// Dropping the rtype reference unpins the payload type's metadata; the
// garbage collector frees the slot object itself once both owners have
// forgotten their pointers.
func (h *header) reclaim() {
	h.capacity = 0
	h.rtype = nil
}

// Recycler is an allocator for type-erased futures that retains one heap
// slot across calls. When successive computations have identical shape
// and each future is dropped before the next call, every call after the
// first reuses the slot in place; otherwise the call degrades to [Box].
//
// The zero value is ready to use. Callers embed a Recycler in their own
// state, one per call site; a Recycler must not be copied after its
// first allocation. [Recycler.Release] drops the cached slot when the
// owner is done.
type Recycler struct {
	recycled *header
}

// Allocate moves a computation onto the heap and returns a type-erased
// future, reusing r's cached slot when possible.
//
// The slot is reused only when its recorded capacity equals the new
// computation's size, the payload type matches, and the previous
// occupant has already been dropped (refcount transition 1→2 succeeds).
// A still-outstanding previous future redirects this call to an
// independent boxed allocation and leaves the slot untouched.
func Allocate[F any, P DeferredPtr[F, T], T any](r *Recycler, f F) Future[T] {
	if r.recycled == nil {
		// One reference for the returned future, one for the
		// allocator's retained pointer.
		s := &slot[F]{payload: f}
		s.refcount.Store(2)
		s.capacity = unsafe.Sizeof(f)
		s.rtype = reflect.TypeFor[F]()
		r.recycled = &s.header
		return slotFuture[F, P, T](s)
	}

	h := r.recycled
	if h.capacity != unsafe.Sizeof(f) {
		// Mismatched shape is the designed degrade path, not an
		// error. The slot stays as-is for future same-shape calls.
		return Box[F, P, T](f)
	}
	if h.rtype != reflect.TypeFor[F]() {
		// Same size, different pointer map: the storage must not be
		// reinterpreted. Same silent degrade path as a size mismatch.
		return Box[F, P, T](f)
	}

	for {
		if h.refcount.CompareAndSwap(1, 2) {
			// The previous occupant has been finalized; only the
			// allocator's reference remained. Overwrite in place.
			s := (*slot[F])(unsafe.Pointer(h))
			s.payload = f
			return slotFuture[F, P, T](s)
		}
		switch h.refcount.Load() {
		case 1:
			// The previous future released between the swap and the
			// load; retry the transition.
		case 2:
			// The previous future is still outstanding; its storage
			// must not be touched.
			return Box[F, P, T](f)
		default:
			panic("dfut: invalid slot refcount")
		}
	}
}

// Release drops the allocator's reference to its cached slot, reclaiming
// the slot if no future is outstanding against it. Whichever of the
// allocator and the last outstanding future releases last performs the
// reclaim. Safe to call more than once; subsequent calls are no-ops, and
// the Recycler may be used again afterwards.
func (r *Recycler) Release() {
	if r.recycled == nil {
		return
	}
	h := r.recycled
	r.recycled = nil
	if h.refcount.Add(^uint32(0)) == 0 {
		h.reclaim()
	}
}

// slotFuture binds a future to a slot's dispatch pair.
func slotFuture[F any, P DeferredPtr[F, T], T any](s *slot[F]) Future[T] {
	return Future[T]{
		ptr:  unsafe.Pointer(s),
		poll: pollRecycled[F, P, T],
		drop: dropRecycled[F],
	}
}

// pollRecycled and dropRecycled form the dispatch pair for slot-backed
// futures. Named generic functions, one static function value per
// payload type instantiation.
func pollRecycled[F any, P DeferredPtr[F, T], T any](p unsafe.Pointer) (T, error) {
	s := (*slot[F])(p)
	return P(&s.payload).PollDeferred()
}

// dropRecycled finalizes the payload in place, then releases the
// future's reference. The payload's finalizer completes before the
// decrement is published, so the side that observes zero sees all of its
// effects before reclaiming the slot.
func dropRecycled[F any](p unsafe.Pointer) {
	s := (*slot[F])(p)
	finalize(&s.payload)
	if s.refcount.Add(^uint32(0)) == 0 {
		s.reclaim()
	}
}
