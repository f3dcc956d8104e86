// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import (
	"os"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For producers and writers: no free slots (backpressure)
// For consumers and readers: no data available
//
// ErrWouldBlock is a control flow signal, not a failure. Non-blocking
// callers retry later (with backoff or after an external readiness event)
// rather than propagating the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// EOF is returned by readers once the writer has signaled end of stream
// and every byte published before it has been consumed.
//
// This is an alias for [iox.EOF], which is [io.EOF].
var EOF = iox.EOF

// ErrDeadlineExceeded is returned by a blocking wait that reached the
// deadline set with SetDeadline. Shared state is left unchanged.
var ErrDeadlineExceeded = os.ErrDeadlineExceeded

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
