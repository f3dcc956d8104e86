// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

// Input is a sequential byte stream with an optional internal buffer.
//
// A buffered Input caches the window returned by its [BufferSource] and
// serves reads from it with a plain copy. The source is consulted only
// when the window cannot satisfy a request. An unbuffered Input forwards
// every read to its [DirectSource].
//
// Whether an Input is buffered is fixed at construction.
//
// An Input must be used from one goroutine at a time.
type Input struct {
	source   BufferSource
	direct   DirectSource
	buf      []byte // Unread part of the current window
	consumed int    // Bytes read from the window, not yet released
}

// NewBufferedInput returns an Input reading through src's windows.
func NewBufferedInput(src BufferSource) *Input {
	in := &Input{}
	in.initBuffered(src)
	return in
}

// NewDirectInput returns an Input without an internal buffer.
func NewDirectInput(src DirectSource) *Input {
	in := &Input{}
	in.initDirect(src)
	return in
}

func (in *Input) initBuffered(src BufferSource) {
	if src == nil {
		panic("ringio: nil buffer source")
	}
	in.source = src
}

func (in *Input) initDirect(src DirectSource) {
	if src == nil {
		panic("ringio: nil direct source")
	}
	in.direct = src
}

// Buffered reports whether the Input manages an internal buffer.
func (in *Input) Buffered() bool {
	return in.source != nil
}

// Read reads len(p) bytes in Blocking mode. It implements [io.Reader].
func (in *Input) Read(p []byte) (int, error) {
	return in.ReadMode(p, Blocking)
}

// ReadMode reads into p.
//
// Blocking: returns once len(p) bytes were read, or earlier with the bytes
// read so far when the stream ended; (0, EOF) when nothing was left.
// NonBlocking: returns the bytes immediately available, (0, ErrWouldBlock)
// when there were none, (0, EOF) at end of stream.
//
// A zero-length p returns (0, nil) without touching the stream.
func (in *Input) ReadMode(p []byte, mode Mode) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if in.source == nil {
		return in.direct.ReadDirect(p, mode)
	}
	if len(p) <= len(in.buf) {
		n := copy(p, in.buf)
		in.buf = in.buf[n:]
		in.consumed += n
		return n, nil
	}
	return in.readSlow(p, mode)
}

func (in *Input) readSlow(p []byte, mode Mode) (int, error) {
	n := 0
	for {
		c := copy(p[n:], in.buf)
		in.buf = in.buf[c:]
		in.consumed += c
		n += c
		if n == len(p) {
			return n, nil
		}
		if err := in.refill(mode); err != nil {
			if n > 0 && (IsWouldBlock(err) || err == EOF) {
				return n, nil
			}
			return n, err
		}
	}
}

// refill releases what was consumed and acquires the next window.
func (in *Input) refill(mode Mode) error {
	if in.consumed > 0 {
		n := in.consumed
		in.consumed = 0
		if err := in.source.ReleaseBuffer(n); err != nil {
			return err
		}
	}
	buf, err := in.source.AcquireBuffer(mode)
	in.buf = buf
	return err
}

// Buffer returns the internal buffer's readable window for zero-copy
// access. The caller must report how much it consumed with Advance before
// the next Read, ReadMode or Buffer call.
//
// Panics if the Input is not buffered.
func (in *Input) Buffer(mode Mode) ([]byte, error) {
	if in.source == nil {
		panic("ringio: Buffer on unbuffered input")
	}
	if len(in.buf) > 0 {
		return in.buf, nil
	}
	if err := in.refill(mode); err != nil {
		return nil, err
	}
	return in.buf, nil
}

// Advance marks n bytes of the window returned by Buffer as consumed.
// Panics if n is negative or exceeds the window.
func (in *Input) Advance(n int) {
	if in.source == nil {
		panic("ringio: Advance on unbuffered input")
	}
	if n < 0 || n > len(in.buf) {
		panic("ringio: advance exceeds buffer")
	}
	in.buf = in.buf[n:]
	in.consumed += n
}

// Output is a sequential byte sink with an optional internal buffer.
//
// A buffered Output copies into the window returned by its [BufferSink]
// and goes back to the sink only when the window is full. Produced bytes
// reach the sink on window change or Flush. Nothing is ever flushed
// implicitly: flushing may block or fail, so callers decide when.
//
// An Output must be used from one goroutine at a time.
type Output struct {
	sink    BufferSink
	direct  DirectSink
	buf     []byte // Unwritten part of the current window
	pending int    // Bytes written into the window, not yet committed
}

// NewBufferedOutput returns an Output writing through sink's windows.
func NewBufferedOutput(sink BufferSink) *Output {
	out := &Output{}
	out.initBuffered(sink)
	return out
}

// NewDirectOutput returns an Output without an internal buffer.
func NewDirectOutput(sink DirectSink) *Output {
	out := &Output{}
	out.initDirect(sink)
	return out
}

func (out *Output) initBuffered(sink BufferSink) {
	if sink == nil {
		panic("ringio: nil buffer sink")
	}
	out.sink = sink
}

func (out *Output) initDirect(sink DirectSink) {
	if sink == nil {
		panic("ringio: nil direct sink")
	}
	out.direct = sink
}

// Buffered reports whether the Output manages an internal buffer.
func (out *Output) Buffered() bool {
	return out.sink != nil
}

// Write writes p in Blocking mode. It implements [io.Writer].
func (out *Output) Write(p []byte) (int, error) {
	return out.WriteMode(p, Blocking)
}

// WriteMode writes p.
//
// Blocking: returns once all of p was accepted, or with an error.
// NonBlocking: accepts what fits immediately and returns
// (n, ErrWouldBlock) when n < len(p).
//
// A zero-length p returns (0, nil) without touching the stream.
func (out *Output) WriteMode(p []byte, mode Mode) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if out.sink == nil {
		return out.direct.WriteDirect(p, mode)
	}
	if len(p) <= len(out.buf) {
		n := copy(out.buf, p)
		out.buf = out.buf[n:]
		out.pending += n
		return n, nil
	}
	return out.writeSlow(p, mode)
}

func (out *Output) writeSlow(p []byte, mode Mode) (int, error) {
	n := 0
	for {
		c := copy(out.buf, p[n:])
		out.buf = out.buf[c:]
		out.pending += c
		n += c
		if n == len(p) {
			return n, nil
		}
		if err := out.refill(mode); err != nil {
			return n, err
		}
	}
}

func (out *Output) commit() error {
	if out.pending == 0 {
		return nil
	}
	n := out.pending
	out.pending = 0
	return out.sink.CommitBuffer(n)
}

// refill commits what was written and acquires the next window.
func (out *Output) refill(mode Mode) error {
	if err := out.commit(); err != nil {
		return err
	}
	buf, err := out.sink.AcquireBuffer(mode)
	out.buf = buf
	return err
}

// Buffer returns the internal buffer's writable window for zero-copy
// access. The caller must report how much it produced with Advance before
// the next Write, WriteMode or Buffer call.
//
// Panics if the Output is not buffered.
func (out *Output) Buffer(mode Mode) ([]byte, error) {
	if out.sink == nil {
		panic("ringio: Buffer on unbuffered output")
	}
	if len(out.buf) > 0 {
		return out.buf, nil
	}
	if err := out.refill(mode); err != nil {
		return nil, err
	}
	return out.buf, nil
}

// Advance marks n bytes of the window returned by Buffer as produced.
// Panics if n is negative or exceeds the window.
func (out *Output) Advance(n int) {
	if out.sink == nil {
		panic("ringio: Advance on unbuffered output")
	}
	if n < 0 || n > len(out.buf) {
		panic("ringio: advance exceeds buffer")
	}
	out.buf = out.buf[n:]
	out.pending += n
}

// Flush commits produced bytes, drops the current window and pushes the
// bytes to the destination.
// It reports whether every buffered byte has arrived. An unbuffered
// Output holds nothing and always reports true.
func (out *Output) Flush(mode Mode) (bool, error) {
	if out.sink == nil {
		return true, nil
	}
	if err := out.commit(); err != nil {
		return false, err
	}
	// The sink may move its buffered bytes while flushing.
	out.buf = nil
	return out.sink.FlushBuffer(mode)
}
