// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dfut provides type-erased deferred computations with storage
// recycling.
//
// Interfaces that expose "produce a deferred result" through a
// dynamically dispatched method normally pay one heap allocation per
// call to box the concrete computation. dfut amortizes that cost: a
// minimal type-erased [Future] with a manually constructed dispatch
// pair, a one-shot boxing allocator as the correctness baseline, and a
// recycling allocator that reuses a single heap slot across successive
// same-shaped calls.
//
// # Architecture
//
//   - Handle: [Future] wraps an opaque payload pointer and a poll/drop
//     dispatch pair. Payloads are heap-pinned: they never move while the
//     future is live, and [Future.Drop] finalizes exactly once on every
//     exit path. [NewFuture] is the low-level extension point.
//   - Non-blocking: suspension is signaled by [code.hybscloud.com/iox.ErrWouldBlock];
//     drivers wait past the boundary with adaptive backoff ([Wait], [Wait2]).
//   - Boxing: [Box] performs one allocation per call, no shared state.
//   - Recycling: [Recycler] retains one slot (header plus trailing payload
//     storage) guarded by an atomic reference count in {1, 2}. [Allocate]
//     reuses the slot in place when the shape matches and the previous
//     future has been dropped; otherwise it degrades to [Box], silently
//     and safely.
//
// # Contracts
//
//   - [Deferred]: concrete computations implement PollDeferred on their
//     pointer type ([DeferredPtr]); allocators move the value into pinned
//     storage and poll in place.
//   - [Finalizer]: optional; runs exactly once during drop, resolved or
//     not. Dropping an unresolved future is the only cancellation signal.
//
// # Integration
//
//   - kont: [FromExpr] and [FromEff] adapt stepped
//     [code.hybscloud.com/kont] computations into deferred computations,
//     one dispatched effect per poll; dropping the future discards the
//     pending suspension.
//   - Transport: [NewPipe] creates endpoints over a bounded lock-free
//     SPSC ring via [code.hybscloud.com/lfq]; Send and Recv are the
//     demonstration call sites, recycling futures from per-endpoint
//     allocator state.
//
// # Example
//
//	tx, rx := dfut.NewPipe[int](4)
//	send := tx.Send(42)
//	recv := rx.Recv()
//	_, v := dfut.Wait2(&send, &recv)
//	// v == 42; subsequent Send/Recv on these endpoints allocate nothing
package dfut
