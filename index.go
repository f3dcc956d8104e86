// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

// Algorithm selects how raw producer/consumer counters map to slots.
//
// An Algorithm is a set of pure functions of (producer, consumer, size).
// It is fixed when a ring is created and never changes afterwards.
//
//	Mirrored: counters in [0, 2n), no slot sacrificed, Cap = n (default)
//	Reserved: counters in [0, n), one slot sacrificed, Cap = n-1
//
// Mirrored doubles the counter domain so that producer-consumer (mod 2n)
// is the occupied count directly: "completely full" (n) and "completely
// empty" (0) never alias, which they would under a plain mod-n scheme.
//
// Sizes need not be powers of two. Wraparound is a compare-and-subtract,
// never a modulo or a mask.
type Algorithm uint8

const (
	// Mirrored uses counters over [0, 2n) and exposes all n slots.
	Mirrored Algorithm = iota
	// Reserved uses counters over [0, n) and keeps one slot empty to tell
	// full from empty.
	Reserved
)

// MaxSize is the largest slot count a ring accepts.
// It keeps the mirrored counter domain 2n representable in a uint64 and
// every offset representable in an int on 64-bit platforms.
const MaxSize = 1 << 62

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case Mirrored:
		return "mirrored"
	case Reserved:
		return "reserved"
	default:
		return "unknown"
	}
}

// valid reports whether a names a known algorithm.
func (a Algorithm) valid() bool {
	return a == Mirrored || a == Reserved
}

// Cap returns the number of usable slots for a ring of n slots.
func (a Algorithm) Cap(n uint64) uint64 {
	if a == Reserved {
		return n - 1
	}
	return n
}

// Limit returns the size of the counter domain for a ring of n slots.
// Counters always lie in [0, Limit(n)).
func (a Algorithm) Limit(n uint64) uint64 {
	if a == Reserved {
		return n
	}
	return 2 * n
}

// used returns the number of occupied slots.
func (a Algorithm) used(prod, cons, n uint64) uint64 {
	if prod >= cons {
		return prod - cons
	}
	return prod + a.Limit(n) - cons
}

// ProducerFree returns the number of slots the producer may fill.
func (a Algorithm) ProducerFree(prod, cons, n uint64) uint64 {
	return a.Cap(n) - a.used(prod, cons, n)
}

// ConsumerFree returns the number of slots the consumer may read.
func (a Algorithm) ConsumerFree(prod, cons, n uint64) uint64 {
	return a.used(prod, cons, n)
}

// HasProducerFree reports whether at least one slot is free.
func (a Algorithm) HasProducerFree(prod, cons, n uint64) bool {
	if a == Reserved {
		return a.Next(prod, n) != cons
	}
	return a.used(prod, cons, n) != n
}

// HasConsumerFree reports whether at least one slot is readable.
func (a Algorithm) HasConsumerFree(prod, cons, n uint64) bool {
	return prod != cons
}

// Offset maps a counter to its physical slot.
func (a Algorithm) Offset(idx, n uint64) uint64 {
	if idx >= n {
		return idx - n
	}
	return idx
}

// Advance returns the counter after moving count slots past idx.
// count must not exceed n.
func (a Algorithm) Advance(idx, count, n uint64) uint64 {
	idx += count
	if limit := a.Limit(n); idx >= limit {
		idx -= limit
	}
	return idx
}

// Next returns the counter one slot past idx.
func (a Algorithm) Next(idx, n uint64) uint64 {
	return a.Advance(idx, 1, n)
}

// Runs splits count slots starting at counter idx into the contiguous run
// ending at the physical end of the buffer and the wrapped remainder.
// second is zero when no wraparound is needed.
func (a Algorithm) Runs(idx, count, n uint64) (first, second uint64) {
	tail := n - a.Offset(idx, n)
	if count <= tail {
		return count, 0
	}
	return tail, count - tail
}
