// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import (
	"code.hybscloud.com/atomix"
)

// ringHeader is the state shared by both sides of a ring.
//
// Each counter has exactly one writer. The flags are used only by ring
// streams. The header holds no Go pointers so it can live in a shared
// memory mapping.
type ringHeader struct {
	_               pad
	producerIndex   atomix.Uint64 // Producer writes, consumer reads
	_               pad
	consumerIndex   atomix.Uint64 // Consumer writes, producer reads
	_               pad
	producerWaiting atomix.Bool // Producer parked for space
	_               pad
	consumerWaiting atomix.Bool // Consumer parked for data
	_               pad
	endOfStream     atomix.Bool // Set once by the producer, never cleared
	_               pad
}

// Ring is the shared state of a single-producer single-consumer ring:
// one slot buffer and two counters.
//
// A Ring hands out exactly one [Producer] and one [Consumer]. The only
// cross-goroutine contact between them is the pair of counters: the
// producer's release store of its counter makes the slots it filled
// visible to the consumer's next acquire load, and vice versa.
//
// Memory: O(size) slots plus a few padded cache lines
type Ring[T any] struct {
	hdr      *ringHeader
	buffer   []T
	size     uint64
	alg      Algorithm
	producer bool
	consumer bool
}

// NewRing creates a ring of size slots using alg.
//
// Panics if size < 1, if size < 2 with [Reserved], or if size > [MaxSize].
func NewRing[T any](size int, alg Algorithm) *Ring[T] {
	checkSize(size, alg)
	return newRing(&ringHeader{}, make([]T, size), alg)
}

func newRing[T any](hdr *ringHeader, buffer []T, alg Algorithm) *Ring[T] {
	return &Ring[T]{
		hdr:    hdr,
		buffer: buffer,
		size:   uint64(len(buffer)),
		alg:    alg,
	}
}

func checkSize(size int, alg Algorithm) {
	if !alg.valid() {
		panic("ringio: unknown algorithm")
	}
	if size < 1 {
		panic("ringio: size must be >= 1")
	}
	if alg == Reserved && size < 2 {
		panic("ringio: reserved ring size must be >= 2")
	}
	if uint64(size) > MaxSize {
		panic("ringio: size exceeds MaxSize")
	}
}

// Cap returns the number of usable slots.
func (r *Ring[T]) Cap() int {
	return int(r.alg.Cap(r.size))
}

// Size returns the number of physical slots.
func (r *Ring[T]) Size() int {
	return int(r.size)
}

// Algorithm returns the index algorithm the ring was created with.
func (r *Ring[T]) Algorithm() Algorithm {
	return r.alg
}

// Producer returns the producer handle. It panics if called twice.
func (r *Ring[T]) Producer() *Producer[T] {
	if r.producer {
		panic("ringio: producer already taken")
	}
	r.producer = true
	p := &Producer[T]{ring: r}
	p.index = r.loadCounter(&r.hdr.producerIndex)
	p.cached = r.loadCounter(&r.hdr.consumerIndex)
	return p
}

// Consumer returns the consumer handle. It panics if called twice.
func (r *Ring[T]) Consumer() *Consumer[T] {
	if r.consumer {
		panic("ringio: consumer already taken")
	}
	r.consumer = true
	c := &Consumer[T]{ring: r}
	c.index = r.loadCounter(&r.hdr.consumerIndex)
	c.cached = r.loadCounter(&r.hdr.producerIndex)
	return c
}

func (r *Ring[T]) loadCounter(counter *atomix.Uint64) uint64 {
	v := counter.LoadAcquire()
	if v >= r.alg.Limit(r.size) {
		panic("ringio: ring counter out of range")
	}
	return v
}

// ranges returns count slots starting at counter idx, split at the
// physical end. Both slices are capped so appends cannot spill into
// slots outside the range.
func (r *Ring[T]) ranges(idx, count uint64) ([]T, []T) {
	off := r.alg.Offset(idx, r.size)
	first, second := r.alg.Runs(idx, count, r.size)
	return r.buffer[off : off+first : off+first], r.buffer[:second:second]
}

// Producer is the writing side of a [Ring].
//
// It caches the consumer counter and refreshes it only in
// UpdateAvailable (and in the convenience methods when the cache says the
// ring is full), so LastAvailable may under-report but never over-report.
//
// A Producer must be used from one goroutine at a time.
type Producer[T any] struct {
	ring   *Ring[T]
	index  uint64 // Own counter
	cached uint64 // Consumer counter as last observed
}

// UpdateAvailable refreshes the cached consumer counter with one acquire
// load and returns the number of free slots.
func (p *Producer[T]) UpdateAvailable() int {
	p.cached = p.ring.hdr.consumerIndex.LoadAcquire()
	return p.LastAvailable()
}

// updateAvailableSync is UpdateAvailable with a sequentially consistent
// load, for callers that stored a waiting flag just before.
func (p *Producer[T]) updateAvailableSync() int {
	p.cached = p.ring.hdr.consumerIndex.Load()
	return p.LastAvailable()
}

// LastAvailable returns the free slot count from cached state only.
func (p *Producer[T]) LastAvailable() int {
	r := p.ring
	return int(r.alg.ProducerFree(p.index, p.cached, r.size))
}

// ContinuousRange returns the free slots up to the physical end of the
// buffer, as of the last availability update.
func (p *Producer[T]) ContinuousRange() []T {
	first, _ := p.Ranges()
	return first
}

// Ranges returns all free slots as of the last availability update,
// split at the physical end of the buffer. second is empty when the free
// space does not wrap.
func (p *Producer[T]) Ranges() (first, second []T) {
	r := p.ring
	return r.ranges(p.index, r.alg.ProducerFree(p.index, p.cached, r.size))
}

// Publish makes the next n slots visible to the consumer.
// n must not exceed LastAvailable.
func (p *Producer[T]) Publish(n int) {
	p.advance(n)
	p.ring.hdr.producerIndex.StoreRelease(p.index)
}

// publishSync is Publish with a sequentially consistent store, ordering
// the counter update before a following load of the consumer's flag.
func (p *Producer[T]) publishSync(n int) {
	p.advance(n)
	p.ring.hdr.producerIndex.Store(p.index)
}

func (p *Producer[T]) advance(n int) {
	r := p.ring
	if n < 0 || uint64(n) > r.alg.ProducerFree(p.index, p.cached, r.size) {
		panic("ringio: publish exceeds available slots")
	}
	p.index = r.alg.Advance(p.index, uint64(n), r.size)
}

// Enqueue copies elem into the next slot and publishes it.
// Returns ErrWouldBlock if the ring is full.
func (p *Producer[T]) Enqueue(elem *T) error {
	r := p.ring
	if !r.alg.HasProducerFree(p.index, p.cached, r.size) {
		p.cached = r.hdr.consumerIndex.LoadAcquire()
		if !r.alg.HasProducerFree(p.index, p.cached, r.size) {
			return ErrWouldBlock
		}
	}

	r.buffer[r.alg.Offset(p.index, r.size)] = *elem
	p.index = r.alg.Next(p.index, r.size)
	r.hdr.producerIndex.StoreRelease(p.index)
	return nil
}

// Write copies as many elements of src as fit and publishes them.
// Returns the number of elements written, possibly zero.
func (p *Producer[T]) Write(src []T) int {
	n := p.LastAvailable()
	if n < len(src) {
		n = p.UpdateAvailable()
	}
	n = min(n, len(src))
	if n == 0 {
		return 0
	}

	first, second := p.ring.ranges(p.index, uint64(n))
	c := copy(first, src)
	copy(second, src[c:n])
	p.Publish(n)
	return n
}

// Cap returns the ring capacity.
func (p *Producer[T]) Cap() int {
	return p.ring.Cap()
}

// Consumer is the reading side of a [Ring].
//
// A Consumer must be used from one goroutine at a time.
type Consumer[T any] struct {
	ring   *Ring[T]
	index  uint64 // Own counter
	cached uint64 // Producer counter as last observed
}

// UpdateAvailable refreshes the cached producer counter with one acquire
// load and returns the number of readable slots.
func (c *Consumer[T]) UpdateAvailable() int {
	c.cached = c.ring.hdr.producerIndex.LoadAcquire()
	return c.LastAvailable()
}

// updateAvailableSync is UpdateAvailable with a sequentially consistent
// load, for callers that stored a waiting flag just before.
func (c *Consumer[T]) updateAvailableSync() int {
	c.cached = c.ring.hdr.producerIndex.Load()
	return c.LastAvailable()
}

// LastAvailable returns the readable slot count from cached state only.
func (c *Consumer[T]) LastAvailable() int {
	r := c.ring
	return int(r.alg.ConsumerFree(c.cached, c.index, r.size))
}

// ContinuousRange returns the readable slots up to the physical end of
// the buffer, as of the last availability update.
func (c *Consumer[T]) ContinuousRange() []T {
	first, _ := c.Ranges()
	return first
}

// Ranges returns all readable slots as of the last availability update,
// split at the physical end of the buffer.
func (c *Consumer[T]) Ranges() (first, second []T) {
	r := c.ring
	return r.ranges(c.index, r.alg.ConsumerFree(c.cached, c.index, r.size))
}

// Release hands the next n slots back to the producer.
// n must not exceed LastAvailable.
func (c *Consumer[T]) Release(n int) {
	c.advance(n)
	c.ring.hdr.consumerIndex.StoreRelease(c.index)
}

// releaseSync is Release with a sequentially consistent store.
func (c *Consumer[T]) releaseSync(n int) {
	c.advance(n)
	c.ring.hdr.consumerIndex.Store(c.index)
}

func (c *Consumer[T]) advance(n int) {
	r := c.ring
	if n < 0 || uint64(n) > r.alg.ConsumerFree(c.cached, c.index, r.size) {
		panic("ringio: release exceeds available slots")
	}
	c.index = r.alg.Advance(c.index, uint64(n), r.size)
}

// Dequeue removes and returns the next element.
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (c *Consumer[T]) Dequeue() (T, error) {
	r := c.ring
	if !r.alg.HasConsumerFree(c.cached, c.index, r.size) {
		c.cached = r.hdr.producerIndex.LoadAcquire()
		if !r.alg.HasConsumerFree(c.cached, c.index, r.size) {
			var zero T
			return zero, ErrWouldBlock
		}
	}

	slot := &r.buffer[r.alg.Offset(c.index, r.size)]
	elem := *slot
	var zero T
	*slot = zero
	c.index = r.alg.Next(c.index, r.size)
	r.hdr.consumerIndex.StoreRelease(c.index)
	return elem, nil
}

// Read copies up to len(dst) readable elements into dst and releases them.
// Returns the number of elements read, possibly zero.
func (c *Consumer[T]) Read(dst []T) int {
	n := c.LastAvailable()
	if n < len(dst) {
		n = c.UpdateAvailable()
	}
	n = min(n, len(dst))
	if n == 0 {
		return 0
	}

	first, second := c.ring.ranges(c.index, uint64(n))
	k := copy(dst, first)
	copy(dst[k:n], second)
	c.Release(n)
	return n
}

// Cap returns the ring capacity.
func (c *Consumer[T]) Cap() int {
	return c.ring.Cap()
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
