package stf

import (
	"errors"
	"math"
	"testing"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/types"
)

func TestExecute_Scenario(t *testing.T) {
	genesis := Genesis(0)
	if genesis.Number != 0 || !genesis.ParentHash.IsZero() {
		t.Fatalf("unexpected genesis: %v", genesis)
	}
	if genesis.PostState != types.HashState(0) {
		t.Fatal("genesis must commit to state 0")
	}

	// {state:0, add:5} -> {1, hash(genesis), hash(5)}
	head1, err := Execute(genesis.Hash(), genesis, types.BlockData{State: 0, Add: 5})
	if err != nil {
		t.Fatalf("block 1: %v", err)
	}
	if head1.Number != 1 {
		t.Errorf("expected number 1, got %d", head1.Number)
	}
	if head1.ParentHash != genesis.Hash() {
		t.Errorf("expected parent hash %s, got %s", genesis.Hash(), head1.ParentHash)
	}
	if head1.PostState != types.HashState(5) {
		t.Error("expected post state hash(5)")
	}

	// {state:5, add:MAX} -> {2, hash(head1), hash(4)}
	head2, err := Execute(head1.Hash(), head1, types.BlockData{State: 5, Add: math.MaxUint64})
	if err != nil {
		t.Fatalf("block 2: %v", err)
	}
	if head2.Number != 2 {
		t.Errorf("expected number 2, got %d", head2.Number)
	}
	if head2.ParentHash != head1.Hash() {
		t.Error("expected head2 to link to head1")
	}
	if head2.PostState != types.HashState(4) {
		t.Error("expected 5 + MaxUint64 to wrap to 4")
	}
}

func TestExecute_Wraparound(t *testing.T) {
	parent := Genesis(math.MaxUint64)
	head, err := Execute(parent.Hash(), parent, types.BlockData{State: math.MaxUint64, Add: 1})
	if err != nil {
		t.Fatalf("wrapping add must not fail: %v", err)
	}
	if head.PostState != types.HashState(0) {
		t.Error("expected MaxUint64 + 1 to wrap to 0")
	}
}

func TestExecute_StateMismatch(t *testing.T) {
	parent := Genesis(10)

	for _, claimed := range []uint64{0, 9, 11, math.MaxUint64} {
		head, err := Execute(parent.Hash(), parent, types.BlockData{State: claimed, Add: 1})
		if !errors.Is(err, adder.ErrStateMismatch) {
			t.Errorf("state %d: expected ErrStateMismatch, got %v", claimed, err)
		}
		if head != (types.HeadData{}) {
			t.Errorf("state %d: expected no head on failure, got %v", claimed, head)
		}
	}
}

func TestExecute_ParentHashMismatch(t *testing.T) {
	parent := Genesis(0)
	forged := parent.Hash()
	forged[0] ^= 0x01

	_, err := Execute(forged, parent, types.BlockData{State: 0, Add: 1})
	if !errors.Is(err, adder.ErrParentHashMismatch) {
		t.Fatalf("expected ErrParentHashMismatch, got %v", err)
	}
}

func TestExecute_HeightOverflow(t *testing.T) {
	parent := types.HeadData{Number: math.MaxUint64, PostState: types.HashState(1)}
	_, err := Execute(parent.Hash(), parent, types.BlockData{State: 1, Add: 1})
	if !errors.Is(err, adder.ErrHeightOverflow) {
		t.Fatalf("expected ErrHeightOverflow, got %v", err)
	}
}

func TestExecute_Deterministic(t *testing.T) {
	parent := Genesis(3)
	block := types.BlockData{State: 3, Add: 39}

	a, errA := Execute(parent.Hash(), parent, block)
	b, errB := Execute(parent.Hash(), parent, block)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("non-deterministic: %v != %v", a, b)
	}
}

func TestApply_ChainProperty(t *testing.T) {
	adds := []uint64{1, 2, math.MaxUint64, 1 << 63, 1 << 63, 17, 0, 99}

	var (
		state  uint64
		blocks []types.BlockData
	)
	for _, add := range adds {
		blocks = append(blocks, types.BlockData{State: state, Add: add})
		state += add
	}

	head, err := Apply(Genesis(0), blocks...)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if head.Number != uint64(len(adds)) {
		t.Errorf("expected number %d, got %d", len(adds), head.Number)
	}
	if head.PostState != types.HashState(state) {
		t.Errorf("expected post state hash(%d)", state)
	}
}

func TestApply_StopsAtFirstFailure(t *testing.T) {
	genesis := Genesis(0)
	blocks := []types.BlockData{
		{State: 0, Add: 2},
		{State: 3, Add: 1}, // wrong: state is 2
		{State: 2, Add: 1},
	}

	head, err := Apply(genesis, blocks...)
	if !errors.Is(err, adder.ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch, got %v", err)
	}
	if head.Number != 1 {
		t.Errorf("expected head before the failing block (number 1), got %d", head.Number)
	}
	if head.PostState != types.HashState(2) {
		t.Error("expected state 2 at the last good head")
	}
}
