// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import "time"

// Mode selects whether a stream call may wait.
//
// Mode is passed explicitly on every call instead of being a property of
// the stream, so one stream can serve both an event loop (NonBlocking)
// and a plain sequential reader (Blocking).
type Mode uint8

const (
	// Blocking calls return once the full request is transferred, the
	// stream ended, a deadline passed, or an error occurred.
	Blocking Mode = iota
	// NonBlocking calls never wait. They transfer what is immediately
	// possible and report ErrWouldBlock when nothing was.
	NonBlocking
)

// String returns the mode name.
func (m Mode) String() string {
	if m == NonBlocking {
		return "non-blocking"
	}
	return "blocking"
}

// BufferSource is the slow path of a buffered [Input].
//
// The Input copies from the window returned by AcquireBuffer without
// calling the source again until the window is exhausted.
type BufferSource interface {
	// AcquireBuffer returns the next readable window.
	// Blocking: waits until the window is non-empty or the stream ended.
	// NonBlocking: returns (nil, ErrWouldBlock) when nothing is readable.
	// Returns (nil, EOF) once the stream has ended and is drained.
	AcquireBuffer(mode Mode) ([]byte, error)

	// ReleaseBuffer hands back n consumed bytes from the front of the most
	// recently acquired window. n never exceeds that window.
	ReleaseBuffer(n int) error
}

// BufferSink is the slow path of a buffered [Output].
type BufferSink interface {
	// AcquireBuffer returns the next writable window.
	// Blocking: waits until the window is non-empty.
	// NonBlocking: returns (nil, ErrWouldBlock) when no space is free.
	AcquireBuffer(mode Mode) ([]byte, error)

	// CommitBuffer hands n produced bytes from the front of the most
	// recently acquired window to the sink.
	CommitBuffer(n int) error

	// FlushBuffer pushes committed bytes to their destination and reports
	// whether everything committed so far has arrived.
	FlushBuffer(mode Mode) (bool, error)
}

// DirectSource is the slow path of an [Input] without an internal buffer.
type DirectSource interface {
	// ReadDirect reads into p honoring mode, with the same result
	// conventions as [Input.ReadMode].
	ReadDirect(p []byte, mode Mode) (int, error)
}

// DirectSink is the slow path of an [Output] without an internal buffer.
type DirectSink interface {
	// WriteDirect writes p honoring mode, with the same result
	// conventions as [Output.WriteMode].
	WriteDirect(p []byte, mode Mode) (int, error)
}

// Notifier is a readiness-notification primitive used by ring streams to
// park a side until its peer makes progress.
//
// Signals accumulate: Signal before Wait is not lost, and several Signals
// may satisfy a single Wait. Waiters must re-check their condition after
// Wait returns.
type Notifier interface {
	// Wait blocks until the notifier is signaled, consuming the
	// accumulated count. A negative timeout waits indefinitely, zero polls.
	// Returns ErrDeadlineExceeded when the timeout elapses first.
	Wait(timeout time.Duration) error

	// Signal wakes one waiter (or the next Wait).
	Signal() error

	// Count returns and clears the accumulated signal count without
	// blocking.
	Count() (uint64, error)

	// Close releases the underlying descriptor.
	Close() error
}

var (
	_ BufferSource = (*ringSource)(nil)
	_ BufferSink   = (*ringSink)(nil)
)
