// Package store persists the heads an importer has committed.
//
// Heads are kept by number and form a contiguous run starting at the
// genesis head (number 0). Values are the canonical 72-byte head
// encoding, so a stored head hashes to the same value it had when it
// was validated.
package store

import (
	"errors"

	"github.com/blockberries/adder/types"
)

// Store errors.
var (
	// ErrNotContiguous: the appended head is not numbered tip+1 (or 0
	// on an empty store).
	ErrNotContiguous = errors.New("store: head number is not contiguous with the tip")
	// ErrCorrupt: a stored value is not a canonical head.
	ErrCorrupt = errors.New("store: corrupt head record")
	// ErrClosed: the store has been closed.
	ErrClosed = errors.New("store: closed")
)

// Store is an append-only run of heads indexed by number.
type Store interface {
	// Append adds head at the end of the run.
	Append(head types.HeadData) error
	// Head returns the head with the given number, if stored.
	Head(number uint64) (types.HeadData, bool, error)
	// Tip returns the highest stored head. ok is false on an empty
	// store.
	Tip() (head types.HeadData, ok bool, err error)
	// Iterate calls fn for each head numbered from..to inclusive, in
	// order, stopping at the first error.
	Iterate(from, to uint64, fn func(types.HeadData) error) error
	// Truncate removes every head numbered above number.
	Truncate(number uint64) error
	// Close releases the store.
	Close() error
}
