// Package sandbox models the fixed resources a validation invocation
// runs with: one linear memory addressed by absolute offsets and a bump
// arena carved out of it. Nothing here grows after construction.
package sandbox

import (
	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned when an (offset, length) pair does not lie
// inside the memory.
var ErrOutOfBounds = errors.New("access out of bounds")

// Memory is a fixed-size linear memory starting at a base address.
type Memory struct {
	base uint32
	data []byte
}

// NewMemory returns a zeroed memory of size bytes addressed from base.
func NewMemory(base, size uint32) *Memory {
	return Wrap(base, make([]byte, size))
}

// Wrap addresses an existing buffer from base. The buffer is used in
// place.
func Wrap(base uint32, data []byte) *Memory {
	if uint64(base)+uint64(len(data)) > 1<<32 {
		panic("sandbox: memory exceeds the 32-bit address space")
	}
	return &Memory{base: base, data: data}
}

// Base returns the first valid address.
func (m *Memory) Base() uint32 {
	return m.base
}

// Size returns the size of the memory in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// Read returns the length bytes at offset. The slice aliases the
// memory.
func (m *Memory) Read(offset, length uint32) ([]byte, error) {
	start, end, err := m.span(offset, length)
	if err != nil {
		return nil, err
	}
	return m.data[start:end:end], nil
}

// Write copies p to offset.
func (m *Memory) Write(offset uint32, p []byte) error {
	if uint64(len(p)) > 1<<32-1 {
		return errors.Wrapf(ErrOutOfBounds, "write of %d bytes", len(p))
	}
	start, end, err := m.span(offset, uint32(len(p)))
	if err != nil {
		return err
	}
	copy(m.data[start:end], p)
	return nil
}

// Zero clears the region at offset.
func (m *Memory) Zero(offset, length uint32) error {
	start, end, err := m.span(offset, length)
	if err != nil {
		return err
	}
	clear(m.data[start:end])
	return nil
}

func (m *Memory) span(offset, length uint32) (uint64, uint64, error) {
	start := uint64(offset)
	end := start + uint64(length)
	if start < uint64(m.base) || end > uint64(m.base)+uint64(len(m.data)) {
		return 0, 0, errors.Wrapf(ErrOutOfBounds, "offset %d length %d, memory [%d, %d)",
			offset, length, m.base, uint64(m.base)+uint64(len(m.data)))
	}
	return start - uint64(m.base), end - uint64(m.base), nil
}
