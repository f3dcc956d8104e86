// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringio

// Options configures ring and pipe creation.
type Options struct {
	// Index algorithm (Mirrored unless Reserved is requested)
	algorithm Algorithm

	// Stream window cap in bytes, 0 for none
	segmentSize int

	// Use in-process notifiers instead of NewNotifier
	local bool

	// Physical slot count (any value >= 1, no rounding)
	size int
}

// Builder creates rings and ring streams with fluent configuration.
//
// Example:
//
//	// Mirrored ring of 1024 events, all 1024 slots usable
//	r := ringio.BuildRing[Event](ringio.New(1024))
//
//	// Reserved ring, one slot kept empty
//	r := ringio.BuildRing[Event](ringio.New(1024).Reserved())
//
//	// In-process byte pipe with 4 KiB windows
//	w, rd, err := ringio.New(1 << 16).SegmentSize(4096).BuildPipe()
type Builder struct {
	opts Options
}

// New creates a builder for a ring of size physical slots.
//
// Size is used as given; it does not need to be a power of 2.
//
// Panics if size < 1 or size > MaxSize.
//
// Example:
//
//	b := ringio.New(1000)
//	r := ringio.BuildRing[int](b.Reserved()) // Cap() == 999
func New(size int) *Builder {
	if size < 1 {
		panic("ringio: size must be >= 1")
	}
	if uint64(size) > MaxSize {
		panic("ringio: size exceeds MaxSize")
	}
	return &Builder{opts: Options{size: size}}
}

// Mirrored selects the mirrored index algorithm: counters over [0, 2n),
// all n slots usable. This is the default.
func (b *Builder) Mirrored() *Builder {
	b.opts.algorithm = Mirrored
	return b
}

// Reserved selects the reserved-slot index algorithm: counters over
// [0, n), n-1 slots usable. Requires size >= 2.
func (b *Builder) Reserved() *Builder {
	b.opts.algorithm = Reserved
	return b
}

// SegmentSize caps the window a ring stream exposes per Buffer call.
// Zero, the default, exposes the whole contiguous free range.
//
// Panics if n < 0.
func (b *Builder) SegmentSize(n int) *Builder {
	if n < 0 {
		panic("ringio: negative segment size")
	}
	b.opts.segmentSize = n
	return b
}

// Local makes BuildPipe use in-process notifiers that hold no
// descriptor, instead of the platform notifier.
func (b *Builder) Local() *Builder {
	b.opts.local = true
	return b
}

// BuildRing creates a Ring[T] from the builder's size and algorithm.
//
// Panics if the algorithm is Reserved and size < 2.
func BuildRing[T any](b *Builder) *Ring[T] {
	return NewRing[T](b.opts.size, b.opts.algorithm)
}

// BuildPipe creates an in-process byte ring and connects a writer and a
// reader to it, each with its own notifier.
//
// Closing both ends releases the notifiers.
func (b *Builder) BuildPipe() (*RingWriter, *RingReader, error) {
	readerWake, writerWake, err := b.notifiers()
	if err != nil {
		return nil, nil, err
	}
	w, r := NewPipe(BuildRing[byte](b), readerWake, writerWake, b.opts.segmentSize)
	return w, r, nil
}

func (b *Builder) notifiers() (Notifier, Notifier, error) {
	if b.opts.local {
		return NewLocalNotifier(), NewLocalNotifier(), nil
	}
	first, err := NewNotifier()
	if err != nil {
		return nil, nil, err
	}
	second, err := NewNotifier()
	if err != nil {
		first.Close()
		return nil, nil, err
	}
	return first, second, nil
}
