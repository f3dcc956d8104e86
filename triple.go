// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

import "code.hybscloud.com/atomix"

// Triple is a single-producer single-consumer triple buffer for handing
// over the most recent value of some state.
//
// The producer and the consumer each own one of three buffers; the third
// is idle. Swapping exchanges a side's buffer with the idle one in a single
// atomic step, so at every instant the producer index, the consumer index
// and the idle index are a permutation of {0, 1, 2} and the two sides
// never touch the same buffer.
//
// Triple never blocks and never queues. The consumer may see the same
// buffer again if the producer has not swapped since, and it misses
// values the producer swapped out twice in between.
type Triple[T any] struct {
	_        pad
	idle     atomix.Uint64 // Exchanged by both sides
	_        pad
	producer uint64 // Producer-owned
	_        pad
	consumer uint64 // Consumer-owned
	_        pad
	buffers  [3]tripleSlot[T]
}

type tripleSlot[T any] struct {
	value T
	_     pad
}

// NewTriple creates a triple buffer with zero-valued buffers.
func NewTriple[T any]() *Triple[T] {
	t := &Triple[T]{producer: 0, consumer: 1}
	t.idle.StoreRelease(2)
	return t
}

// NewTripleOf creates a triple buffer with every buffer set to initial.
func NewTripleOf[T any](initial T) *Triple[T] {
	t := NewTriple[T]()
	for i := range t.buffers {
		t.buffers[i].value = initial
	}
	return t
}

// ProducerBuffer returns the producer's private buffer (producer only).
// The pointer is valid until the next SwapProducer.
func (t *Triple[T]) ProducerBuffer() *T {
	return &t.buffers[t.producer].value
}

// ConsumerBuffer returns the consumer's private buffer (consumer only).
// The pointer is valid until the next SwapConsumer.
func (t *Triple[T]) ConsumerBuffer() *T {
	return &t.buffers[t.consumer].value
}

// SwapProducer publishes the producer's buffer as the idle one and takes
// over the previously idle buffer (producer only).
func (t *Triple[T]) SwapProducer() {
	t.producer = t.exchange(t.producer)
}

// SwapConsumer hands the consumer's buffer back as the idle one and takes
// over the previously idle buffer (consumer only).
func (t *Triple[T]) SwapConsumer() {
	t.consumer = t.exchange(t.consumer)
}

// exchange stores mine as the idle index and returns the previous one.
// The acquire-release exchange orders the caller's writes to its buffer
// before the other side's reads of it.
func (t *Triple[T]) exchange(mine uint64) uint64 {
	for {
		idle := t.idle.LoadAcquire()
		if t.idle.CompareAndSwapAcqRel(idle, mine) {
			return idle
		}
	}
}
