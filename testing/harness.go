package addertest

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/chain"
	"github.com/blockberries/adder/store"
	"github.com/blockberries/adder/types"
)

// Harness drives a validator through an importer backed by an
// in-memory store, tracking the counter value so tests can build
// valid blocks without doing the arithmetic themselves.
type Harness struct {
	t     *testing.T
	im    *chain.Importer
	store *store.MemoryStore
	state uint64
}

// NewHarness creates a test harness importing through v.
func NewHarness(t *testing.T, v adder.Validator) *Harness {
	t.Helper()
	s := store.NewMemory()
	return &Harness{t: t, im: chain.NewImporter(v, s, nil), store: s}
}

// Importer returns the underlying importer for direct access.
func (h *Harness) Importer() *chain.Importer {
	return h.im
}

// Store returns the underlying store.
func (h *Harness) Store() store.Store {
	return h.store
}

// State returns the committed counter value.
func (h *Harness) State() uint64 {
	return h.state
}

// Genesis opens the importer with the given genesis state.
func (h *Harness) Genesis(state uint64) types.HeadData {
	h.t.Helper()
	head, err := h.im.Open(context.Background(), state)
	if err != nil {
		h.t.Fatalf("Open (genesis state %d) failed: %v", state, err)
	}
	h.state = state
	return head
}

// GenesisDefault opens the importer with genesis state 0.
func (h *Harness) GenesisDefault() types.HeadData {
	h.t.Helper()
	return h.Genesis(0)
}

// Execute validates a block on top of the tip without committing.
func (h *Harness) Execute(block types.BlockData) types.HeadData {
	h.t.Helper()
	head, err := h.im.Execute(context.Background(), block)
	if err != nil {
		h.t.Fatalf("Execute (%+v) failed: %v", block, err)
	}
	return head
}

// Commit commits the staged head.
func (h *Harness) Commit() types.HeadData {
	h.t.Helper()
	head, err := h.im.Commit(context.Background())
	if err != nil {
		h.t.Fatalf("Commit failed: %v", err)
	}
	return head
}

// ExecuteAndCommit is a convenience that executes a block and
// commits, returning the new tip.
func (h *Harness) ExecuteAndCommit(block types.BlockData) types.HeadData {
	h.t.Helper()
	h.Execute(block)
	head := h.Commit()
	h.state = block.State + block.Add
	return head
}

// Add imports a block adding n to the committed counter.
func (h *Harness) Add(n uint64) types.HeadData {
	h.t.Helper()
	return h.ExecuteAndCommit(MakeBlock(h.state, n))
}

// MustReject asserts that block is rejected with target and that the
// tip does not move.
func (h *Harness) MustReject(block types.BlockData, target error) {
	h.t.Helper()
	before := h.im.Tip()
	_, err := h.im.Execute(context.Background(), block)
	if !errors.Is(err, target) {
		h.t.Fatalf("expected %v, got %v", target, err)
	}
	if after := h.im.Tip(); after != before {
		h.t.Fatalf("tip moved on rejection: %v -> %v", before, after)
	}
}

// --- Helper Factories ---

// MakeBlock creates a block claiming state and adding add.
func MakeBlock(state, add uint64) types.BlockData {
	return types.BlockData{State: state, Add: add}
}
