// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package ringio

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Segment file layout:
//
//	[0, 128)            segmentHeader
//	[128, dataOffset)   ringHeader (counters and stream flags)
//	[dataOffset, +size) byte slots
const (
	segmentMagic      = "RINGIO\x00\x00"
	segmentVersion    = uint32(1)
	segmentHeaderSize = 128
	ringHeaderOffset  = segmentHeaderSize
)

var dataOffset = alignUp(ringHeaderOffset+uint64(unsafe.Sizeof(ringHeader{})), 64)

// ErrBadSegment is returned by OpenSegment when the file is not a valid
// ring segment.
var ErrBadSegment = errors.New("ringio: bad segment")

type segmentHeader struct {
	magic     [8]byte  // 0x00
	version   uint32   // 0x08
	algorithm uint32   // 0x0C
	size      uint64   // 0x10: slot count
	dataOff   uint64   // 0x18: offset of the first slot
	totalSize uint64   // 0x20: file size
	_         [88]byte // to 0x80
}

// Segment is a byte ring living in a file-backed MAP_SHARED mapping, so a
// writer and a reader in different processes can share it.
//
// Each process maps the file, takes one side from Ring, and wraps it with
// NewRingWriter or NewRingReader. Notifiers are exchanged out of band, for
// example by passing eventfds with NotifierFD and NotifierFromFD.
type Segment struct {
	path string
	mem  []byte
	ring *Ring[byte]
}

// CreateSegment creates the file at path and maps a fresh ring of size
// slots. The file must not exist.
//
// Panics if size or alg is invalid for a ring.
func CreateSegment(path string, size int, alg Algorithm) (*Segment, error) {
	checkSize(size, alg)
	total := dataOffset + uint64(size)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("ringio: create segment: %w", err)
	}
	defer f.Close()
	if err := unix.Ftruncate(int(f.Fd()), int64(total)); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("ringio: resize segment: %w", err)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(total), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("ringio: map segment: %w", err)
	}

	h := (*segmentHeader)(unsafe.Pointer(&mem[0]))
	h.version = segmentVersion
	h.algorithm = uint32(alg)
	h.size = uint64(size)
	h.dataOff = dataOffset
	h.totalSize = total
	// Magic last: a peer that sees it sees a complete header.
	copy(h.magic[:], segmentMagic)

	return newSegment(path, mem, h), nil
}

// OpenSegment maps an existing segment created by CreateSegment.
func OpenSegment(path string) (*Segment, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ringio: open segment: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("ringio: stat segment: %w", err)
	}
	if info.Size() < int64(dataOffset) {
		return nil, fmt.Errorf("%w: file too small: %d bytes", ErrBadSegment, info.Size())
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("ringio: map segment: %w", err)
	}

	h := (*segmentHeader)(unsafe.Pointer(&mem[0]))
	if err := validateSegment(h, uint64(len(mem))); err != nil {
		unix.Munmap(mem)
		return nil, err
	}
	s := newSegment(path, mem, h)
	if err := validateCounters(s.ring); err != nil {
		unix.Munmap(mem)
		return nil, err
	}
	return s, nil
}

func newSegment(path string, mem []byte, h *segmentHeader) *Segment {
	hdr := (*ringHeader)(unsafe.Pointer(&mem[ringHeaderOffset]))
	end := h.dataOff + h.size
	slots := mem[h.dataOff:end:end]
	return &Segment{
		path: path,
		mem:  mem,
		ring: newRing(hdr, slots, Algorithm(h.algorithm)),
	}
}

func validateSegment(h *segmentHeader, mapped uint64) error {
	if string(h.magic[:]) != segmentMagic {
		return fmt.Errorf("%w: magic %q", ErrBadSegment, h.magic[:])
	}
	if h.version != segmentVersion {
		return fmt.Errorf("%w: version %d, want %d", ErrBadSegment, h.version, segmentVersion)
	}
	alg := Algorithm(h.algorithm)
	if h.algorithm > 0xff || !alg.valid() {
		return fmt.Errorf("%w: algorithm %d", ErrBadSegment, h.algorithm)
	}
	if h.size < 1 || h.size > MaxSize || (alg == Reserved && h.size < 2) {
		return fmt.Errorf("%w: size %d", ErrBadSegment, h.size)
	}
	if h.dataOff != dataOffset {
		return fmt.Errorf("%w: data offset %d, want %d", ErrBadSegment, h.dataOff, dataOffset)
	}
	if h.totalSize != h.dataOff+h.size || h.totalSize > mapped {
		return fmt.Errorf("%w: total size %d, mapped %d", ErrBadSegment, h.totalSize, mapped)
	}
	return nil
}

func validateCounters(r *Ring[byte]) error {
	limit := r.alg.Limit(r.size)
	if p := r.hdr.producerIndex.LoadAcquire(); p >= limit {
		return fmt.Errorf("%w: producer counter %d", ErrBadSegment, p)
	}
	if c := r.hdr.consumerIndex.LoadAcquire(); c >= limit {
		return fmt.Errorf("%w: consumer counter %d", ErrBadSegment, c)
	}
	return nil
}

// Ring returns the ring stored in the mapping. Every call returns the
// same Ring, so each process can take one side only once.
// The Ring must not be used after Close.
func (s *Segment) Ring() *Ring[byte] {
	return s.ring
}

// Path returns the backing file path.
func (s *Segment) Path() string {
	return s.path
}

// Close unmaps the segment. Subsequent calls are no-ops.
func (s *Segment) Close() error {
	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("ringio: unmap segment: %w", err)
	}
	return nil
}

// Remove unlinks the backing file. Existing mappings stay valid until
// closed.
func (s *Segment) Remove() error {
	if err := os.Remove(s.path); err != nil {
		return fmt.Errorf("ringio: remove segment: %w", err)
	}
	return nil
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
