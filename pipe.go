// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"code.hybscloud.com/lfq"
)

// Pipe endpoints are the package's demonstration call sites: methods
// that must hand back a deferred result through a polymorphic surface
// without paying an allocation per call. Each endpoint embeds its own
// [Recycler]; since transfers of the same element type always have the
// same shape, steady-state Send/Recv traffic allocates nothing.

// Sender is the producer endpoint of a bounded pipe.
// Single-producer discipline: at most one goroutine may use a Sender,
// and at most one Send future may be outstanding at a time for storage
// reuse to engage (a second outstanding future degrades to boxing).
type Sender[T any] struct {
	q      *lfq.SPSC[T]
	alloc  Recycler
	serial Serial
}

// Serial returns the serial number assigned to this sender's pipe.
func (s *Sender[T]) Serial() Serial {
	return s.serial
}

// Send returns a deferred transfer of v into the pipe.
// The future resolves once the value is enqueued; while the ring is
// full the future suspends with iox.ErrWouldBlock.
func (s *Sender[T]) Send(v T) Future[struct{}] {
	return Allocate[sendStep[T], *sendStep[T], struct{}](&s.alloc, sendStep[T]{q: s.q, v: v})
}

// Close drops the sender's cached future storage.
func (s *Sender[T]) Close() {
	s.alloc.Release()
}

// Receiver is the consumer endpoint of a bounded pipe.
// Single-consumer discipline, mirroring [Sender].
type Receiver[T any] struct {
	q      *lfq.SPSC[T]
	alloc  Recycler
	serial Serial
}

// Serial returns the serial number assigned to this receiver's pipe.
func (r *Receiver[T]) Serial() Serial {
	return r.serial
}

// Recv returns a deferred receive from the pipe.
// The future resolves to the next element; while the ring is empty the
// future suspends with iox.ErrWouldBlock.
func (r *Receiver[T]) Recv() Future[T] {
	return Allocate[recvStep[T], *recvStep[T], T](&r.alloc, recvStep[T]{q: r.q})
}

// Close drops the receiver's cached future storage.
func (r *Receiver[T]) Close() {
	r.alloc.Release()
}

// sendStep is the deferred payload behind Sender.Send.
type sendStep[T any] struct {
	q *lfq.SPSC[T]
	v T
}

// PollDeferred attempts the enqueue. Non-blocking: returns
// iox.ErrWouldBlock while the bounded ring is full.
func (op *sendStep[T]) PollDeferred() (struct{}, error) {
	if err := op.q.Enqueue(&op.v); err != nil {
		return struct{}{}, err
	}
	return struct{}{}, nil
}

// recvStep is the deferred payload behind Receiver.Recv.
type recvStep[T any] struct {
	q *lfq.SPSC[T]
}

// PollDeferred attempts the dequeue. Non-blocking: returns
// iox.ErrWouldBlock while the bounded ring is empty.
func (op *recvStep[T]) PollDeferred() (T, error) {
	return op.q.Dequeue()
}

// pipePair holds both endpoints and the ring in a single allocation.
// The SPSC queue is embedded as a value; only its buffer is a separate
// heap object.
type pipePair[T any] struct {
	s Sender[T]
	r Receiver[T]
	q lfq.SPSC[T]
}

// NewPipe creates a connected sender/receiver pair over a bounded
// lock-free SPSC ring with the given capacity.
//
// Transfers are non-blocking: futures returned by Send and Recv suspend
// with iox.ErrWouldBlock when the peer has not yet consumed or produced.
// Drive coupled endpoints on one goroutine with [Wait2], or each on its
// own goroutine with [Wait].
func NewPipe[T any](capacity int) (*Sender[T], *Receiver[T]) {
	serial := nextSerial()

	pair := &pipePair[T]{}
	pair.q.Init(capacity)
	pair.s = Sender[T]{q: &pair.q, serial: serial}
	pair.r = Receiver[T]{q: &pair.q, serial: serial}
	return &pair.s, &pair.r
}
