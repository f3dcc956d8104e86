// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/ringio"
)

// countingNotifier records how often each Notifier method is called.
type countingNotifier struct {
	ringio.Notifier
	signals atomix.Int32
	waits   atomix.Int32
	closes  atomix.Int32
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{Notifier: ringio.NewLocalNotifier()}
}

func (n *countingNotifier) Signal() error {
	n.signals.Add(1)
	return n.Notifier.Signal()
}

func (n *countingNotifier) Wait(timeout time.Duration) error {
	n.waits.Add(1)
	return n.Notifier.Wait(timeout)
}

func (n *countingNotifier) Close() error {
	n.closes.Add(1)
	return n.Notifier.Close()
}

func newCountingPipe(size, segment int) (*ringio.RingWriter, *ringio.RingReader, *countingNotifier, *countingNotifier) {
	readerWake, writerWake := newCountingNotifier(), newCountingNotifier()
	ring := ringio.NewRing[byte](size, ringio.Mirrored)
	w, r := ringio.NewPipe(ring, readerWake, writerWake, segment)
	return w, r, readerWake, writerWake
}

// =============================================================================
// Ring Streams - Sequential
// =============================================================================

func TestPipePublishOnFlush(t *testing.T) {
	w, r, readerWake, writerWake := newCountingPipe(64, 0)

	if n, err := w.Write([]byte("hello")); n != 5 || err != nil {
		t.Fatalf("Write: got (%d, %v), want (5, nil)", n, err)
	}
	p := make([]byte, 16)
	if n, err := r.ReadMode(p, ringio.NonBlocking); n != 0 || !errors.Is(err, ringio.ErrWouldBlock) {
		t.Fatalf("ReadMode before Flush: got (%d, %v), want (0, ErrWouldBlock)", n, err)
	}
	if ok, err := w.Flush(ringio.Blocking); !ok || err != nil {
		t.Fatalf("Flush: got (%v, %v), want (true, nil)", ok, err)
	}
	n, err := r.ReadMode(p, ringio.NonBlocking)
	if n != 5 || err != nil || string(p[:n]) != "hello" {
		t.Fatalf("ReadMode: got (%d, %v, %q), want (5, nil, \"hello\")", n, err, p[:n])
	}

	// Nobody waited, so nobody was signaled.
	if got := readerWake.signals.Load(); got != 0 {
		t.Fatalf("reader signals: got %d, want 0", got)
	}
	if got := writerWake.signals.Load(); got != 0 {
		t.Fatalf("writer signals: got %d, want 0", got)
	}
}

func TestPipeEndOfStream(t *testing.T) {
	w, r, err := ringio.New(16).Local().BuildPipe()
	if err != nil {
		t.Fatalf("BuildPipe: %v", err)
	}
	w.Write([]byte("abc"))
	if w.EndOfStream() {
		t.Fatal("EndOfStream before SetEndOfStream: got true")
	}
	if err := w.SetEndOfStream(); err != nil {
		t.Fatalf("SetEndOfStream: %v", err)
	}
	if !w.EndOfStream() {
		t.Fatal("EndOfStream: got false, want true")
	}

	got, err := io.ReadAll(r)
	if err != nil || string(got) != "abc" {
		t.Fatalf("ReadAll: got (%q, %v), want (\"abc\", nil)", got, err)
	}
	if n, err := r.ReadMode(make([]byte, 1), ringio.NonBlocking); n != 0 || err != ringio.EOF {
		t.Fatalf("ReadMode after drain: got (%d, %v), want (0, EOF)", n, err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Write after end of stream: expected panic")
		}
	}()
	w.Write([]byte("x"))
}

// TestPipeLazyRelease shows that consumed bytes return to the writer when
// the reader next changes window.
func TestPipeLazyRelease(t *testing.T) {
	w, r, err := ringio.New(8).Local().BuildPipe()
	if err != nil {
		t.Fatalf("BuildPipe: %v", err)
	}
	if n, err := w.WriteMode([]byte("01234567"), ringio.NonBlocking); n != 8 || err != nil {
		t.Fatalf("WriteMode: got (%d, %v), want (8, nil)", n, err)
	}
	if n, err := w.WriteMode([]byte("8"), ringio.NonBlocking); n != 0 || !errors.Is(err, ringio.ErrWouldBlock) {
		t.Fatalf("WriteMode on full: got (%d, %v), want (0, ErrWouldBlock)", n, err)
	}

	p := make([]byte, 8)
	if n, err := r.ReadMode(p, ringio.NonBlocking); n != 8 || err != nil {
		t.Fatalf("ReadMode: got (%d, %v), want (8, nil)", n, err)
	}
	if n, _ := w.WriteMode([]byte("8"), ringio.NonBlocking); n != 0 {
		t.Fatalf("WriteMode before release: got %d, want 0", n)
	}
	if _, err := r.ReadMode(p, ringio.NonBlocking); !errors.Is(err, ringio.ErrWouldBlock) {
		t.Fatalf("ReadMode empty: got %v, want ErrWouldBlock", err)
	}
	if n, err := w.WriteMode([]byte("8"), ringio.NonBlocking); n != 1 || err != nil {
		t.Fatalf("WriteMode after release: got (%d, %v), want (1, nil)", n, err)
	}
}

func TestPipeSegmentSize(t *testing.T) {
	w, r, err := ringio.New(64).SegmentSize(5).Local().BuildPipe()
	if err != nil {
		t.Fatalf("BuildPipe: %v", err)
	}
	buf, err := w.Buffer(ringio.NonBlocking)
	if err != nil || len(buf) != 5 {
		t.Fatalf("writer Buffer: got (%d bytes, %v), want (5, nil)", len(buf), err)
	}
	copy(buf, "abcde")
	w.Advance(5)
	buf, err = w.Buffer(ringio.NonBlocking)
	if err != nil || len(buf) != 5 {
		t.Fatalf("writer second Buffer: got (%d bytes, %v), want (5, nil)", len(buf), err)
	}
	copy(buf, "fgh")
	w.Advance(3)
	w.Flush(ringio.NonBlocking)

	buf, err = r.Buffer(ringio.NonBlocking)
	if err != nil || string(buf) != "abcde" {
		t.Fatalf("reader Buffer: got (%q, %v), want (\"abcde\", nil)", buf, err)
	}
	r.Advance(5)
	buf, err = r.Buffer(ringio.NonBlocking)
	if err != nil || string(buf) != "fgh" {
		t.Fatalf("reader second Buffer: got (%q, %v), want (\"fgh\", nil)", buf, err)
	}
}

func TestPipeReaderDeadline(t *testing.T) {
	w, r, err := ringio.New(16).Local().BuildPipe()
	if err != nil {
		t.Fatalf("BuildPipe: %v", err)
	}
	defer w.Close()
	defer r.Close()

	start := time.Now()
	r.SetDeadline(start.Add(20 * time.Millisecond))
	n, err := r.Read(make([]byte, 4))
	if n != 0 || !errors.Is(err, ringio.ErrDeadlineExceeded) {
		t.Fatalf("Read: got (%d, %v), want (0, ErrDeadlineExceeded)", n, err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("Read returned after %v, before the deadline", elapsed)
	}
}

func TestPipeWriterDeadline(t *testing.T) {
	w, r, err := ringio.New(4).Reserved().Local().BuildPipe()
	if err != nil {
		t.Fatalf("BuildPipe: %v", err)
	}
	defer w.Close()
	defer r.Close()

	w.SetDeadline(time.Now().Add(20 * time.Millisecond))
	n, err := w.Write([]byte("abcd"))
	if n != 3 || !errors.Is(err, ringio.ErrDeadlineExceeded) {
		t.Fatalf("Write: got (%d, %v), want (3, ErrDeadlineExceeded)", n, err)
	}

	// The three accepted bytes were published before the wait.
	w.SetDeadline(time.Time{})
	p := make([]byte, 4)
	if n, err := r.ReadMode(p, ringio.NonBlocking); n != 3 || err != nil || string(p[:n]) != "abc" {
		t.Fatalf("ReadMode: got (%d, %v, %q), want (3, nil, \"abc\")", n, err, p[:n])
	}
}

func TestPipeClose(t *testing.T) {
	w, r, readerWake, writerWake := newCountingPipe(16, 0)

	if err := w.Close(); err != nil {
		t.Fatalf("writer Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("writer second Close: %v", err)
	}
	if readerWake.closes.Load() != 0 || writerWake.closes.Load() != 0 {
		t.Fatal("notifiers closed while the reader is attached")
	}
	if err := r.Close(); err != nil {
		t.Fatalf("reader Close: %v", err)
	}
	if readerWake.closes.Load() != 1 || writerWake.closes.Load() != 1 {
		t.Fatalf("closes: got (%d, %d), want (1, 1)", readerWake.closes.Load(), writerWake.closes.Load())
	}
}

// =============================================================================
// Ring Streams - Concurrent
// =============================================================================

// TestPipeWakeParkedReader parks the reader on an empty ring and checks
// that the writer's commit wakes it through the notifier.
func TestPipeWakeParkedReader(t *testing.T) {
	if ringio.RaceEnabled {
		t.Skip("skip: ring bytes are ordered by atomix counters")
	}
	w, r, readerWake, _ := newCountingPipe(64, 0)
	r.SetDeadline(time.Now().Add(10 * time.Second))

	type result struct {
		data string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		p := make([]byte, 5)
		n, err := r.Read(p)
		done <- result{string(p[:n]), err}
	}()

	// Give the reader time to exhaust its spin phase and park.
	time.Sleep(50 * time.Millisecond)
	w.Write([]byte("hello"))
	w.Flush(ringio.Blocking)

	res := <-done
	if res.err != nil || res.data != "hello" {
		t.Fatalf("Read: got (%q, %v), want (\"hello\", nil)", res.data, res.err)
	}
	if readerWake.waits.Load() == 0 {
		t.Fatal("reader never parked")
	}
	if readerWake.signals.Load() == 0 {
		t.Fatal("parked reader was not signaled")
	}
}

func TestPipeConcurrentTransfer(t *testing.T) {
	if ringio.RaceEnabled {
		t.Skip("skip: ring bytes are ordered by atomix counters")
	}
	tests := []struct {
		name string
		b    *ringio.Builder
	}{
		{"platform notifier", ringio.New(4096)},
		{"local notifier", ringio.New(4096).Local()},
		{"reserved segmented", ringio.New(1000).Reserved().SegmentSize(333).Local()},
	}
	rng := rand.New(rand.NewPCG(7, 11))
	payload := make([]byte, 4<<20)
	for i := range payload {
		payload[i] = byte(rng.Uint32())
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, r, err := tt.b.BuildPipe()
			if err != nil {
				t.Fatalf("BuildPipe: %v", err)
			}
			deadline := time.Now().Add(20 * time.Second)
			w.SetDeadline(deadline)
			r.SetDeadline(deadline)

			werr := make(chan error, 1)
			go func() {
				defer w.Close()
				rng := rand.New(rand.NewPCG(1, 2))
				for off := 0; off < len(payload); {
					n := min(1+rng.IntN(9000), len(payload)-off)
					if _, err := w.Write(payload[off : off+n]); err != nil {
						werr <- err
						return
					}
					off += n
				}
				werr <- w.SetEndOfStream()
			}()

			got, err := io.ReadAll(r)
			r.Close()
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if err := <-werr; err != nil {
				t.Fatalf("writer: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
			}
		})
	}
}
