// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut

import (
	"code.hybscloud.com/iox"
)

// Wait drives a future to completion, waiting past iox.ErrWouldBlock
// boundaries with adaptive backoff (iox.Backoff), then drops it and
// returns the resolved value. Does not spawn goroutines or create
// channels.
func Wait[T any](fut *Future[T]) T {
	var bo iox.Backoff
	for {
		v, err := fut.Poll()
		if err == nil {
			fut.Drop()
			return v
		}
		bo.Wait()
	}
}

// Wait2 drives two futures to completion, interleaving both on the
// calling goroutine and backing off only when neither side can make
// progress. Each future is dropped as it resolves. Use for coupled
// pairs, such as both ends of a bounded pipe, where driving one side
// to completion first could deadlock.
func Wait2[A, B any](fa *Future[A], fb *Future[B]) (A, B) {
	var a A
	var b B
	doneA, doneB := false, false
	var bo iox.Backoff
	for !doneA || !doneB {
		progress := false
		if !doneA {
			if v, err := fa.Poll(); err == nil {
				a = v
				fa.Drop()
				doneA = true
				progress = true
			}
		}
		if !doneB {
			if v, err := fb.Poll(); err == nil {
				b = v
				fb.Drop()
				doneB = true
				progress = true
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return a, b
}
