// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"os"
	"time"

	"code.hybscloud.com/atomix"
)

// Local is an in-process notifier: an atomic signal counter plus a
// one-slot channel used as the parking primitive.
type Local struct {
	count atomix.Uint64
	ready chan struct{}
}

// NewLocal returns an in-process notifier.
func NewLocal() *Local {
	return &Local{ready: make(chan struct{}, 1)}
}

// Signal adds one to the counter and wakes a parked Wait.
func (l *Local) Signal() error {
	l.count.AddAcqRel(1)
	select {
	case l.ready <- struct{}{}:
	default:
	}
	return nil
}

// Count reads and clears the counter.
func (l *Local) Count() (uint64, error) {
	for {
		n := l.count.LoadAcquire()
		if n == 0 {
			return 0, nil
		}
		if l.count.CompareAndSwapAcqRel(n, 0) {
			return n, nil
		}
	}
}

// Wait blocks until the counter is non-zero and clears it.
// A negative timeout waits indefinitely; zero only polls.
// Returns os.ErrDeadlineExceeded on timeout.
func (l *Local) Wait(timeout time.Duration) error {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	for {
		if n, _ := l.Count(); n > 0 {
			return nil
		}
		if timeout == 0 {
			return os.ErrDeadlineExceeded
		}
		select {
		case <-l.ready:
		case <-expired:
			if n, _ := l.Count(); n > 0 {
				return nil
			}
			return os.ErrDeadlineExceeded
		}
	}
}

// Close is a no-op; Local holds no descriptor.
func (l *Local) Close() error {
	return nil
}
