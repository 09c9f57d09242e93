// Package stf implements the adder state-transition function.
//
// The chain state is one uint64 counter; a head commits to it through
// PostState = HashState(counter). A block names the counter value it
// starts from and an amount to add. Addition wraps: the state space is
// the ring of integers modulo 2^64.
//
// Execute is pure. Validity depends on the immediate parent only.
package stf

import (
	"math"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/types"
)

// Execute applies block on top of parent and returns the successor
// head. parentHash must be the hash of parent.
//
// On failure the returned head is the zero value and the error is one
// of adder.ErrParentHashMismatch, adder.ErrStateMismatch or
// adder.ErrHeightOverflow.
func Execute(parentHash types.Hash, parent types.HeadData, block types.BlockData) (types.HeadData, error) {
	if parent.Hash() != parentHash {
		return types.HeadData{}, adder.ErrParentHashMismatch
	}
	if types.HashState(block.State) != parent.PostState {
		return types.HeadData{}, adder.ErrStateMismatch
	}
	if parent.Number == math.MaxUint64 {
		return types.HeadData{}, adder.ErrHeightOverflow
	}

	newState := block.State + block.Add

	return types.HeadData{
		Number:     parent.Number + 1,
		ParentHash: parentHash,
		PostState:  types.HashState(newState),
	}, nil
}

// Genesis returns the head at number 0 committing to state.
func Genesis(state uint64) types.HeadData {
	return types.HeadData{
		PostState: types.HashState(state),
	}
}

// Apply executes blocks in order on top of parent and returns the
// last head. It stops at the first failing block and returns the head
// reached before it together with the error.
func Apply(parent types.HeadData, blocks ...types.BlockData) (types.HeadData, error) {
	head := parent
	for _, block := range blocks {
		next, err := Execute(head.Hash(), head, block)
		if err != nil {
			return head, err
		}
		head = next
	}
	return head, nil
}
