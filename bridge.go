// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"code.hybscloud.com/kont"
)

// Dispatcher interprets effect operations for a stepped kont computation.
// It is non-blocking: it returns iox.ErrWouldBlock at the I/O boundary
// when the operation cannot make progress, leaving the suspension
// unconsumed for a later retry.
type Dispatcher func(op kont.Operation) (kont.Resumed, error)

// Stepped adapts a stepped kont computation into a deferred computation.
// Each poll dispatches the pending operation and resumes the suspension
// on success, advancing effect by effect until the computation resolves.
//
// All Stepped[T] values have the same shape, so protocols with any mix
// of effects recycle through a single [Recycler] slot.
type Stepped[T any] struct {
	susp     *kont.Suspension[T]
	dispatch Dispatcher
	result   T
}

// FromExpr evaluates m until its first effect suspension and wraps the
// remainder as a deferred computation interpreted by dispatch.
func FromExpr[T any](m kont.Expr[T], dispatch Dispatcher) Stepped[T] {
	v, susp := kont.StepExpr(m)
	return Stepped[T]{susp: susp, dispatch: dispatch, result: v}
}

// FromEff is the Cont-world variant of [FromExpr].
func FromEff[T any](m kont.Eff[T], dispatch Dispatcher) Stepped[T] {
	return FromExpr(kont.Reify(m), dispatch)
}

// PollDeferred dispatches pending operations until the computation
// resolves or the dispatcher reports iox.ErrWouldBlock.
func (s *Stepped[T]) PollDeferred() (T, error) {
	for s.susp != nil {
		v, err := s.dispatch(s.susp.Op())
		if err != nil {
			var zero T
			return zero, err
		}
		s.result, s.susp = s.susp.Resume(v)
	}
	return s.result, nil
}

// Finalize discards a still-pending suspension. Dropping the owning
// future is the only cancellation signal: the computation is abandoned
// at its current effect boundary.
func (s *Stepped[T]) Finalize() {
	if s.susp != nil {
		s.susp.Discard()
		s.susp = nil
	}
}
