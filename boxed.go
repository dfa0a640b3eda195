// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"unsafe"
)

// Box moves a computation into a fresh heap allocation and returns a
// type-erased future bound to it. Exactly one allocation per call, no
// reuse. The correctness baseline that [Allocate] degrades to whenever
// its reuse preconditions are not met.
func Box[F any, P DeferredPtr[F, T], T any](f F) Future[T] {
	p := new(F)
	*p = f
	return Future[T]{
		ptr:  unsafe.Pointer(p),
		poll: pollBoxed[F, P, T],
		drop: dropBoxed[F],
	}
}

// pollBoxed and dropBoxed form the dispatch pair for boxed futures.
// Named generic functions produce one static function value per payload
// type instantiation, so assembling a Future costs no allocation beyond
// the box itself.
func pollBoxed[F any, P DeferredPtr[F, T], T any](p unsafe.Pointer) (T, error) {
	return P((*F)(p)).PollDeferred()
}

func dropBoxed[F any](p unsafe.Pointer) {
	finalize((*F)(p))
}
