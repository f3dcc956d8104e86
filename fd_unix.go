// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build unix

package ringio

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// FDInput is an [Input] reading from a file descriptor.
//
// The descriptor is switched to non-blocking mode. NonBlocking reads map
// EAGAIN to ErrWouldBlock; Blocking reads park in poll(2). A read of zero
// bytes is end of stream. The caller keeps ownership of the descriptor.
type FDInput struct {
	Input
	file *fdFile
}

// FDOutput is an [Output] writing to a file descriptor.
//
// With an internal buffer, bytes reach the descriptor only when the
// buffer is full or on Flush.
type FDOutput struct {
	Output
	file *fdFile
}

// NewFDInput returns an Input over fd. A bufSize of 0 makes every read a
// read(2) into the caller's slice; otherwise reads are served from an
// internal buffer of bufSize bytes.
func NewFDInput(fd, bufSize int) (*FDInput, error) {
	f, err := newFDFile(fd, bufSize)
	if err != nil {
		return nil, err
	}
	in := &FDInput{file: f}
	if bufSize == 0 {
		in.Input.initDirect(f)
	} else {
		in.Input.initBuffered((*fdSource)(f))
	}
	return in, nil
}

// NewFDOutput returns an Output over fd. A bufSize of 0 makes every write
// a write(2) from the caller's slice.
func NewFDOutput(fd, bufSize int) (*FDOutput, error) {
	f, err := newFDFile(fd, bufSize)
	if err != nil {
		return nil, err
	}
	out := &FDOutput{file: f}
	if bufSize == 0 {
		out.Output.initDirect(f)
	} else {
		out.Output.initBuffered((*fdSink)(f))
	}
	return out, nil
}

// FD returns the descriptor.
func (in *FDInput) FD() int { return in.file.fd }

// SetDeadline bounds every later blocking wait. A zero t disables it.
func (in *FDInput) SetDeadline(t time.Time) { in.file.deadline = t }

// FD returns the descriptor.
func (out *FDOutput) FD() int { return out.file.fd }

// SetDeadline bounds every later blocking wait. A zero t disables it.
func (out *FDOutput) SetDeadline(t time.Time) { out.file.deadline = t }

// fdFile is a non-blocking descriptor plus an optional fixed buffer.
// buf[start:end] holds bytes read but not consumed (input) or committed
// but not yet written (output).
type fdFile struct {
	fd         int
	buf        []byte
	start, end int
	deadline   time.Time
}

func newFDFile(fd, bufSize int) (*fdFile, error) {
	if bufSize < 0 {
		panic("ringio: negative buffer size")
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("ringio: set non-blocking: %w", err)
	}
	f := &fdFile{fd: fd}
	if bufSize > 0 {
		f.buf = make([]byte, bufSize)
	}
	return f, nil
}

// wait parks until fd is ready for events or the deadline passes.
func (f *fdFile) wait(events int16) error {
	fds := []unix.PollFd{{Fd: int32(f.fd), Events: events}}
	for {
		ms := -1
		if !f.deadline.IsZero() {
			remaining := time.Until(f.deadline)
			if remaining <= 0 {
				return ErrDeadlineExceeded
			}
			ms = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}
		fds[0].Revents = 0
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("ringio: poll: %w", err)
		}
		if n > 0 {
			// POLLHUP and POLLERR also end the wait; the next call reports them.
			return nil
		}
	}
}

// read performs one successful read(2) into p.
func (f *fdFile) read(p []byte, mode Mode) (int, error) {
	for {
		n, err := unix.Read(f.fd, p)
		switch err {
		case nil:
			if n == 0 {
				return 0, EOF
			}
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			if mode == NonBlocking {
				return 0, ErrWouldBlock
			}
			if err := f.wait(unix.POLLIN); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("ringio: read: %w", err)
		}
	}
}

// write performs one successful write(2) from p.
func (f *fdFile) write(p []byte, mode Mode) (int, error) {
	for {
		n, err := unix.Write(f.fd, p)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			if mode == NonBlocking {
				return 0, ErrWouldBlock
			}
			if err := f.wait(unix.POLLOUT); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("ringio: write: %w", err)
		}
	}
}

// ReadDirect reads until p is full, the stream ends, or (NonBlocking)
// the descriptor has nothing more.
func (f *fdFile) ReadDirect(p []byte, mode Mode) (int, error) {
	n := 0
	for n < len(p) {
		c, err := f.read(p[n:], mode)
		n += c
		if err != nil {
			if n > 0 && (IsWouldBlock(err) || err == EOF) {
				return n, nil
			}
			return n, err
		}
	}
	return n, nil
}

// WriteDirect writes all of p, or (NonBlocking) what the descriptor
// accepts before it would block.
func (f *fdFile) WriteDirect(p []byte, mode Mode) (int, error) {
	n := 0
	for n < len(p) {
		c, err := f.write(p[n:], mode)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// fdSource serves an [Input] from the fixed buffer.
type fdSource fdFile

func (s *fdSource) AcquireBuffer(mode Mode) ([]byte, error) {
	if s.start < s.end {
		return s.buf[s.start:s.end], nil
	}
	n, err := (*fdFile)(s).read(s.buf, mode)
	if err != nil {
		return nil, err
	}
	s.start, s.end = 0, n
	return s.buf[:n], nil
}

func (s *fdSource) ReleaseBuffer(n int) error {
	s.start += n
	return nil
}

// fdSink serves an [Output] from the fixed buffer.
type fdSink fdFile

func (s *fdSink) AcquireBuffer(mode Mode) ([]byte, error) {
	if s.end == len(s.buf) {
		if err := s.drain(mode); err != nil && !(IsWouldBlock(err) && s.end < len(s.buf)) {
			return nil, err
		}
	}
	return s.buf[s.end:], nil
}

func (s *fdSink) CommitBuffer(n int) error {
	s.end += n
	return nil
}

func (s *fdSink) FlushBuffer(mode Mode) (bool, error) {
	err := s.drain(mode)
	if IsWouldBlock(err) {
		return false, nil
	}
	return s.start == s.end, err
}

// drain writes buffered bytes and moves what remains to the front.
func (s *fdSink) drain(mode Mode) error {
	var err error
	for s.start < s.end {
		var n int
		n, err = (*fdFile)(s).write(s.buf[s.start:s.end], mode)
		s.start += n
		if err != nil {
			break
		}
	}
	s.end = copy(s.buf, s.buf[s.start:s.end])
	s.start = 0
	return err
}

var (
	_ BufferSource = (*fdSource)(nil)
	_ BufferSink   = (*fdSink)(nil)
	_ DirectSource = (*fdFile)(nil)
	_ DirectSink   = (*fdFile)(nil)
)
