package sandbox

import (
	"github.com/pkg/errors"
)

// ErrArenaExhausted is returned when an allocation does not fit in what
// is left of the arena.
var ErrArenaExhausted = errors.New("arena exhausted")

// Arena is a bump allocator over a fixed region of a Memory. Allocations
// are only released all at once by Reset.
type Arena struct {
	mem   *Memory
	start uint32
	size  uint32
	used  uint32
}

// NewArena returns an arena over [start, start+size) of mem.
func NewArena(mem *Memory, start, size uint32) (*Arena, error) {
	if _, err := mem.Read(start, size); err != nil {
		return nil, errors.Wrap(err, "arena region")
	}
	return &Arena{mem: mem, start: start, size: size}, nil
}

// Alloc reserves n bytes and returns their offset.
func (a *Arena) Alloc(n uint32) (uint32, error) {
	if n > a.size-a.used {
		return 0, errors.Wrapf(ErrArenaExhausted, "alloc %d bytes, %d of %d free", n, a.size-a.used, a.size)
	}
	offset := a.start + a.used
	a.used += n
	return offset, nil
}

// Bytes allocates n bytes and returns them as a slice of the memory
// together with their offset.
func (a *Arena) Bytes(n uint32) (uint32, []byte, error) {
	offset, err := a.Alloc(n)
	if err != nil {
		return 0, nil, err
	}
	b, err := a.mem.Read(offset, n)
	if err != nil {
		return 0, nil, err
	}
	return offset, b, nil
}

// Reset releases every allocation and clears the region.
func (a *Arena) Reset() {
	if a.used > 0 {
		_ = a.mem.Zero(a.start, a.used)
	}
	a.used = 0
}

// Used returns the number of allocated bytes.
func (a *Arena) Used() uint32 {
	return a.used
}

// Free returns the number of bytes still available.
func (a *Arena) Free() uint32 {
	return a.size - a.used
}
