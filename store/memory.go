package store

import (
	"fmt"
	"sync"

	"github.com/blockberries/adder/types"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps heads in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	heads  []types.HeadData
	closed bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(head types.HeadData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if head.Number != uint64(len(s.heads)) {
		return fmt.Errorf("%w: next #%d, got #%d", ErrNotContiguous, len(s.heads), head.Number)
	}
	s.heads = append(s.heads, head)
	return nil
}

func (s *MemoryStore) Head(number uint64) (types.HeadData, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.HeadData{}, false, ErrClosed
	}
	if number >= uint64(len(s.heads)) {
		return types.HeadData{}, false, nil
	}
	return s.heads[number], true, nil
}

func (s *MemoryStore) Tip() (types.HeadData, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.HeadData{}, false, ErrClosed
	}
	if len(s.heads) == 0 {
		return types.HeadData{}, false, nil
	}
	return s.heads[len(s.heads)-1], true, nil
}

func (s *MemoryStore) Iterate(from, to uint64, fn func(types.HeadData) error) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	var heads []types.HeadData
	if from < uint64(len(s.heads)) && from <= to {
		end := uint64(len(s.heads))
		if to < end-1 {
			end = to + 1
		}
		heads = append(heads, s.heads[from:end]...)
	}
	s.mu.RUnlock()

	for _, head := range heads {
		if err := fn(head); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Truncate(number uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if number < uint64(len(s.heads)) {
		s.heads = s.heads[:number+1]
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
