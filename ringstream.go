// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// spinRounds bounds the busy-wait a ring stream performs before it
// publishes its waiting flag and parks on its notifier.
const spinRounds = 64

// session is what both endpoints of one ring stream share: the ring and
// the two notifiers. The last endpoint to detach closes the notifiers.
type session struct {
	ring       *Ring[byte]
	readerWake Notifier // Reader parks here, writer signals
	writerWake Notifier // Writer parks here, reader signals
	refs       atomix.Uint64
}

func newSession(ring *Ring[byte], readerWake, writerWake Notifier, refs uint64) *session {
	if readerWake == nil || writerWake == nil {
		panic("ringio: nil notifier")
	}
	s := &session{ring: ring, readerWake: readerWake, writerWake: writerWake}
	s.refs.StoreRelease(refs)
	return s
}

func (s *session) detach() error {
	for {
		refs := s.refs.LoadAcquire()
		if refs == 0 {
			return nil
		}
		if !s.refs.CompareAndSwapAcqRel(refs, refs-1) {
			continue
		}
		if refs > 1 {
			return nil
		}
		err := s.readerWake.Close()
		if werr := s.writerWake.Close(); err == nil {
			err = werr
		}
		return err
	}
}

// waitTimeout converts a deadline into a Notifier.Wait timeout.
func waitTimeout(deadline time.Time) time.Duration {
	if deadline.IsZero() {
		return -1
	}
	return max(time.Until(deadline), 0)
}

// capWindow limits w to the configured segment size.
func capWindow(w []byte, segment int) []byte {
	if segment > 0 && len(w) > segment {
		return w[:segment:segment]
	}
	return w
}

// ringSink is the producer-side slow path of a [RingWriter].
type ringSink struct {
	p        *Producer[byte]
	hdr      *ringHeader
	wake     Notifier // Own notifier
	peer     Notifier // Reader's notifier
	segment  int
	deadline time.Time
}

func (s *ringSink) AcquireBuffer(mode Mode) ([]byte, error) {
	if s.hdr.endOfStream.Load() {
		panic("ringio: write after end of stream")
	}
	if s.p.UpdateAvailable() == 0 {
		if mode == NonBlocking {
			return nil, ErrWouldBlock
		}
		if err := s.waitSpace(); err != nil {
			return nil, err
		}
	}
	return capWindow(s.p.ContinuousRange(), s.segment), nil
}

// waitSpace returns once the producer has free slots.
func (s *ringSink) waitSpace() error {
	sw := spin.Wait{}
	for range spinRounds {
		if s.p.UpdateAvailable() > 0 {
			return nil
		}
		sw.Once()
	}
	for {
		s.hdr.producerWaiting.Store(true)
		if s.p.updateAvailableSync() > 0 {
			s.hdr.producerWaiting.Store(false)
			return nil
		}
		err := s.wake.Wait(waitTimeout(s.deadline))
		s.hdr.producerWaiting.Store(false)
		if err != nil {
			return err
		}
		if s.p.UpdateAvailable() > 0 {
			return nil
		}
	}
}

func (s *ringSink) CommitBuffer(n int) error {
	s.p.publishSync(n)
	return s.wakePeer()
}

func (s *ringSink) wakePeer() error {
	if s.hdr.consumerWaiting.Load() {
		return s.peer.Signal()
	}
	return nil
}

// FlushBuffer has nothing to do: committed bytes are already published.
func (s *ringSink) FlushBuffer(Mode) (bool, error) {
	return true, nil
}

// ringSource is the consumer-side slow path of a [RingReader].
type ringSource struct {
	c        *Consumer[byte]
	hdr      *ringHeader
	wake     Notifier // Own notifier
	peer     Notifier // Writer's notifier
	segment  int
	deadline time.Time
}

func (s *ringSource) AcquireBuffer(mode Mode) ([]byte, error) {
	for {
		if s.c.UpdateAvailable() > 0 {
			return capWindow(s.c.ContinuousRange(), s.segment), nil
		}
		if s.hdr.endOfStream.Load() {
			// Everything published before end of stream is visible now.
			if s.c.UpdateAvailable() > 0 {
				return capWindow(s.c.ContinuousRange(), s.segment), nil
			}
			return nil, EOF
		}
		if mode == NonBlocking {
			return nil, ErrWouldBlock
		}
		if err := s.waitData(); err != nil {
			return nil, err
		}
	}
}

// waitData returns once data or end of stream may be observable.
func (s *ringSource) waitData() error {
	sw := spin.Wait{}
	for range spinRounds {
		if s.c.UpdateAvailable() > 0 || s.hdr.endOfStream.Load() {
			return nil
		}
		sw.Once()
	}
	s.hdr.consumerWaiting.Store(true)
	if s.c.updateAvailableSync() > 0 || s.hdr.endOfStream.Load() {
		s.hdr.consumerWaiting.Store(false)
		return nil
	}
	err := s.wake.Wait(waitTimeout(s.deadline))
	s.hdr.consumerWaiting.Store(false)
	return err
}

func (s *ringSource) ReleaseBuffer(n int) error {
	s.c.releaseSync(n)
	if s.hdr.producerWaiting.Load() {
		return s.peer.Signal()
	}
	return nil
}

// RingWriter is the producer end of a ring-backed byte stream.
//
// It is a buffered [Output] whose windows are slices of the ring itself:
// Write copies straight into ring slots and Buffer exposes them for
// zero-copy production. Produced bytes become visible to the reader when
// the window changes or on Flush; the reader is signaled only if it
// announced it was waiting.
//
// A RingWriter must be used from one goroutine at a time.
type RingWriter struct {
	Output
	sink     *ringSink
	sess     *session
	detached bool
}

// RingReader is the consumer end of a ring-backed byte stream.
//
// It is a buffered [Input] whose windows are slices of the ring itself.
// Consumed bytes are handed back to the writer when the window changes.
// After the writer sets end of stream, the reader still delivers every
// byte published before it and then reports EOF.
//
// A RingReader must be used from one goroutine at a time.
type RingReader struct {
	Input
	source   *ringSource
	sess     *session
	detached bool
}

// NewPipe connects both ends of a byte ring inside one process.
//
// readerWake parks the reader and writerWake parks the writer. Both
// notifiers are closed when the second endpoint is closed. segment caps
// the window exposed per Buffer call; zero means the whole free range.
func NewPipe(ring *Ring[byte], readerWake, writerWake Notifier, segment int) (*RingWriter, *RingReader) {
	sess := newSession(ring, readerWake, writerWake, 2)
	return newRingWriter(sess, segment), newRingReader(sess, segment)
}

// NewRingWriter attaches a writer to ring, typically one mapped from a
// shared memory [Segment] whose reader lives in another process.
//
// wake is the notifier the writer parks on and peer the one the reader
// parks on. Closing the writer closes both.
func NewRingWriter(ring *Ring[byte], wake, peer Notifier, segment int) *RingWriter {
	return newRingWriter(newSession(ring, peer, wake, 1), segment)
}

// NewRingReader attaches a reader to ring. wake is the notifier the
// reader parks on and peer the one the writer parks on. Closing the
// reader closes both.
func NewRingReader(ring *Ring[byte], wake, peer Notifier, segment int) *RingReader {
	return newRingReader(newSession(ring, wake, peer, 1), segment)
}

func newRingWriter(sess *session, segment int) *RingWriter {
	if segment < 0 {
		panic("ringio: negative segment size")
	}
	w := &RingWriter{
		sink: &ringSink{
			p:       sess.ring.Producer(),
			hdr:     sess.ring.hdr,
			wake:    sess.writerWake,
			peer:    sess.readerWake,
			segment: segment,
		},
		sess: sess,
	}
	w.Output.initBuffered(w.sink)
	return w
}

func newRingReader(sess *session, segment int) *RingReader {
	if segment < 0 {
		panic("ringio: negative segment size")
	}
	r := &RingReader{
		source: &ringSource{
			c:       sess.ring.Consumer(),
			hdr:     sess.ring.hdr,
			wake:    sess.readerWake,
			peer:    sess.writerWake,
			segment: segment,
		},
		sess: sess,
	}
	r.Input.initBuffered(r.source)
	return r
}

// SetEndOfStream commits everything written so far and marks the stream
// as ended. It cannot be undone; further writes panic.
func (w *RingWriter) SetEndOfStream() error {
	if err := w.Output.commit(); err != nil {
		return err
	}
	w.Output.buf = nil
	w.sink.hdr.endOfStream.Store(true)
	return w.sink.wakePeer()
}

// EndOfStream reports whether SetEndOfStream was called.
func (w *RingWriter) EndOfStream() bool {
	return w.sink.hdr.endOfStream.Load()
}

// SetDeadline bounds every later blocking wait for free space.
// A zero t disables the deadline. A wait that reaches the deadline
// returns ErrDeadlineExceeded and publishes nothing.
func (w *RingWriter) SetDeadline(t time.Time) {
	w.sink.deadline = t
}

// Close detaches the writer from the stream without flushing.
// Unflushed bytes are discarded.
func (w *RingWriter) Close() error {
	if w.detached {
		return nil
	}
	w.detached = true
	return w.sess.detach()
}

// SetDeadline bounds every later blocking wait for data.
// A zero t disables the deadline. A wait that reaches the deadline
// returns ErrDeadlineExceeded and releases nothing.
func (r *RingReader) SetDeadline(t time.Time) {
	r.source.deadline = t
}

// Close detaches the reader from the stream.
func (r *RingReader) Close() error {
	if r.detached {
		return nil
	}
	r.detached = true
	return r.sess.detach()
}
