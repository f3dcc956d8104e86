// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringio provides lock-free single-producer single-consumer data
// exchange primitives and a buffered sequential I/O contract on top of
// them.
//
// The package has three layers:
//
//   - Ring: a bounded SPSC ring of slots with two index algorithms.
//   - Input / Output: byte streams with an optional internal buffer and
//     a per-call Blocking or NonBlocking mode.
//   - RingReader / RingWriter: byte streams over a Ring, parking on a
//     readiness notifier when the ring is empty or full.
//
// Triple is a separate primitive for handing over the latest value of
// some state without queuing.
//
// # Quick Start
//
//	r := ringio.NewRing[Event](1024, ringio.Mirrored)
//	p, c := r.Producer(), r.Consumer()
//
//	// Producer goroutine
//	ev := Event{ID: 1}
//	if err := p.Enqueue(&ev); ringio.IsWouldBlock(err) {
//	    // Ring is full - handle backpressure
//	}
//
//	// Consumer goroutine
//	ev, err := c.Dequeue()
//	if ringio.IsWouldBlock(err) {
//	    // Ring is empty - try again later
//	}
//
// Builder API:
//
//	r := ringio.BuildRing[Event](ringio.New(1024).Reserved())
//	w, rd, err := ringio.New(1 << 16).SegmentSize(4096).BuildPipe()
//
// # Index Algorithms
//
// A ring of n slots keeps a producer counter and a consumer counter.
// The Algorithm decides how they map to slots and how full is told from
// empty:
//
//	Mirrored: counters in [0, 2n), Cap() == n     (default)
//	Reserved: counters in [0, n),  Cap() == n-1   (one slot kept empty)
//
// Sizes need not be powers of 2. Sizes above [MaxSize] are rejected at
// construction so the mirrored counter domain never overflows.
//
// # Zero-Copy Ranges
//
// Besides Enqueue/Dequeue and Write/Read, both sides expose their slots
// directly:
//
//	p.UpdateAvailable()            // one acquire load of the peer counter
//	first, second := p.Ranges()    // free slots, split at the buffer end
//	n := fill(first, second)
//	p.Publish(n)                   // one release store
//
// LastAvailable answers from cached state without touching shared
// memory. It may under-report, never over-report.
//
// # Streams
//
// Input and Output serve reads and writes from a cached window with a
// plain copy, calling their backend only when the window is exhausted.
// Read and Write implement io.Reader and io.Writer in Blocking mode;
// ReadMode and WriteMode take the mode explicitly:
//
//	n, err := in.ReadMode(p, ringio.NonBlocking)
//	switch {
//	case err == nil:          // n > 0 bytes read
//	case ringio.IsWouldBlock(err): // nothing available now
//	case err == ringio.EOF:   // stream ended
//	}
//
// Buffer and Advance give zero-copy access to the window. Output never
// flushes implicitly; call Flush.
//
// # Ring Streams
//
// A RingWriter and a RingReader share a byte ring and two notifiers. A
// side that cannot progress spins briefly, publishes a waiting flag, and
// parks on its own notifier. The peer signals only when it sees that flag,
// so an uncontended transfer makes no system calls.
//
//	w, r, err := ringio.New(1 << 16).BuildPipe()
//	go func() {
//	    w.Write(payload)
//	    w.SetEndOfStream()
//	    w.Close()
//	}()
//	data, err := io.ReadAll(r)
//	r.Close()
//
// The reader delivers every byte published before end of stream, then
// reports EOF. SetDeadline bounds blocking waits.
//
// On Linux, a ring can live in a shared memory [Segment] and the notifiers
// can be eventfds passed between processes.
//
// # Error Handling
//
// Operations that cannot proceed return [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox] for ecosystem consistency:
//
//	backoff := iox.Backoff{}
//	for p.Enqueue(&item) != nil {
//	    backoff.Wait()
//	}
//	backoff.Reset()
//
// Contract violations (publishing more than is available, taking a side
// twice, writing after end of stream) panic.
//
// # Thread Safety
//
// A Producer and a Consumer may run on different goroutines. Each handle,
// and each stream, must be used by one goroutine at a time. Triple has
// the same rule for its producer and consumer methods.
//
// # Race Detection
//
// The race detector cannot observe happens-before edges established by
// acquire-release atomics on a separate word, so it may report the slot
// accesses of a correct ring. Tests that exercise rings concurrently are
// skipped under -race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, [code.hybscloud.com/spin] for the spin phase before
// parking, and [golang.org/x/sys/unix] for eventfd, poll and mmap.
package ringio
