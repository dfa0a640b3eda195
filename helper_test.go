// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dfut_test

import (
	"sync/atomic"

	"code.hybscloud.com/dfut"
	"code.hybscloud.com/iox"
)

// adder resolves to a+b after a fixed number of suspensions, carrying a
// bulky buffer so the payload has real size.
type adder struct {
	buf    [64]byte
	a, b   int
	yields int
}

func (ad *adder) PollDeferred() (int, error) {
	if ad.yields > 0 {
		ad.yields--
		return 0, iox.ErrWouldBlock
	}
	return ad.a + ad.b, nil
}

// wide has a different size than adder, for shape-mismatch paths.
type wide struct {
	pad [128]byte
	v   int
}

func (w *wide) PollDeferred() (int, error) {
	return w.v, nil
}

// marked resolves immediately and counts its finalizations.
type marked struct {
	v     int
	drops *atomic.Int32
}

func (m *marked) PollDeferred() (int, error) {
	return m.v, nil
}

func (m *marked) Finalize() {
	m.drops.Add(1)
}

// drain polls a future to completion without backoff and drops it.
// Used where iox.Backoff waiting would distort allocation counts.
func drain[T any](fut *dfut.Future[T]) T {
	for {
		v, err := fut.Poll()
		if err == nil {
			fut.Drop()
			return v
		}
	}
}
