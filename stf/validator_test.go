package stf

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/types"
)

func TestValidator(t *testing.T) {
	genesis := Genesis(0)
	res, err := Validator{}.Validate(context.Background(), types.NewValidationParams(genesis, types.BlockData{State: 0, Add: 5}))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	head, err := res.Head()
	if err != nil {
		t.Fatalf("decode head: %v", err)
	}
	want, _ := Execute(genesis.Hash(), genesis, types.BlockData{State: 0, Add: 5})
	if head != want {
		t.Errorf("expected %v, got %v", want, head)
	}
}

func TestValidator_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Validator{}.Validate(ctx, types.NewValidationParams(Genesis(1), types.BlockData{State: 0}))
	if !errors.Is(err, adder.ErrStateMismatch) {
		t.Errorf("expected ErrStateMismatch, got %v", err)
	}

	_, err = Validator{}.Validate(ctx, types.ValidationParams{ParentHead: []byte{1}, BlockData: types.BlockData{}.Encode()})
	if m, ok := adder.IsMalformed(err); !ok || m.Op != "decode parent head" {
		t.Errorf("expected malformed parent head, got %v", err)
	}

	_, err = Validator{}.Validate(ctx, types.ValidationParams{ParentHead: Genesis(0).Encode(), BlockData: []byte{1}})
	if m, ok := adder.IsMalformed(err); !ok || m.Op != "decode block data" {
		t.Errorf("expected malformed block data, got %v", err)
	}
}
