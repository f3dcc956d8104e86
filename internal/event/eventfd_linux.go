// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package event

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/unix"
)

// FD is an eventfd-backed notifier.
//
// The descriptor is always non-blocking; Wait parks in poll(2) and then
// drains the counter with a non-blocking read.
type FD struct {
	fd     int
	closed atomix.Bool
}

// New returns an eventfd notifier.
func New() (*FD, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("event: eventfd: %w", err)
	}
	return &FD{fd: fd}, nil
}

// FromFD adopts an existing eventfd, for example one inherited from a
// parent process. The descriptor is switched to non-blocking mode.
func FromFD(fd int) (*FD, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("event: set non-blocking: %w", err)
	}
	return &FD{fd: fd}, nil
}

// FD returns the underlying descriptor.
func (e *FD) FD() int {
	return e.fd
}

// Signal adds one to the eventfd counter.
func (e *FD) Signal() error {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	for {
		_, err := unix.Write(e.fd, b[:])
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			// Counter saturated: the waiter is already readable.
			return nil
		default:
			return fmt.Errorf("event: signal: %w", err)
		}
	}
}

// Count reads and clears the counter. It returns 0 when nothing was
// signaled.
func (e *FD) Count() (uint64, error) {
	var b [8]byte
	for {
		n, err := unix.Read(e.fd, b[:])
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, nil
		default:
			return 0, fmt.Errorf("event: read: %w", err)
		}
		if n != len(b) {
			return 0, fmt.Errorf("event: short read: %d bytes", n)
		}
		return binary.NativeEndian.Uint64(b[:]), nil
	}
}

// Wait blocks until the counter is non-zero and clears it.
// A negative timeout waits indefinitely; zero only polls.
// Returns os.ErrDeadlineExceeded on timeout.
func (e *FD) Wait(timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	fds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
	for {
		n, err := e.Count()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		ms := -1
		if timeout == 0 {
			return os.ErrDeadlineExceeded
		}
		if timeout > 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return os.ErrDeadlineExceeded
			}
			ms = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}

		fds[0].Revents = 0
		if _, err := unix.Poll(fds, ms); err != nil && err != unix.EINTR {
			return fmt.Errorf("event: poll: %w", err)
		}
	}
}

// Close closes the descriptor. Subsequent calls are no-ops.
func (e *FD) Close() error {
	if e.closed.Load() {
		return nil
	}
	e.closed.Store(true)
	return unix.Close(e.fd)
}
