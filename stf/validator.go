package stf

import (
	"context"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/types"
)

// Compile-time interface check.
var _ adder.Validator = Validator{}

// Validator runs Execute directly on the host, without a sandbox. It
// is the reference every other adder.Validator must agree with.
type Validator struct{}

// Validate implements adder.Validator.
func (Validator) Validate(_ context.Context, params types.ValidationParams) (types.ValidationResult, error) {
	parent, err := types.DecodeHead(params.ParentHead)
	if err != nil {
		return types.ValidationResult{}, adder.NewMalformedError("decode parent head", err)
	}
	block, err := types.DecodeBlockData(params.BlockData)
	if err != nil {
		return types.ValidationResult{}, adder.NewMalformedError("decode block data", err)
	}

	head, err := Execute(types.Keccak256(params.ParentHead), parent, block)
	if err != nil {
		return types.ValidationResult{}, err
	}
	return types.ValidationResult{HeadData: head.Encode()}, nil
}
