package addertest

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/stf"
	"github.com/blockberries/adder/types"
)

// RunComplianceSuite runs a standard compliance test suite against a
// validator to verify it implements the adder transition rule.
//
// The factory function should return a fresh validator for each
// test. Validators that are also an adder.Connection are closed when
// the test ends.
func RunComplianceSuite(t *testing.T, factory func() adder.Validator) {
	t.Helper()

	newValidator := func(t *testing.T) adder.Validator {
		v := factory()
		if c, ok := v.(adder.Connection); ok {
			t.Cleanup(func() { c.Close() })
		}
		return v
	}

	validate := func(t *testing.T, v adder.Validator, parent types.HeadData, block types.BlockData) (types.HeadData, error) {
		t.Helper()
		res, err := v.Validate(context.Background(), types.NewValidationParams(parent, block))
		if err != nil {
			return types.HeadData{}, err
		}
		return res.Head()
	}

	t.Run("scenario", func(t *testing.T) {
		h := NewHarness(t, newValidator(t))
		genesis := h.GenesisDefault()

		head1 := h.Add(5)
		if head1.Number != 1 || head1.ParentHash != genesis.Hash() || head1.PostState != types.HashState(5) {
			t.Fatalf("unexpected head 1: %v", head1)
		}

		head2 := h.Add(math.MaxUint64)
		if head2.Number != 2 || head2.ParentHash != head1.Hash() || head2.PostState != types.HashState(4) {
			t.Fatalf("unexpected head 2: %v", head2)
		}
	})

	t.Run("wraparound", func(t *testing.T) {
		v := newValidator(t)
		head, err := validate(t, v, stf.Genesis(math.MaxUint64), MakeBlock(math.MaxUint64, 1))
		if err != nil {
			t.Fatalf("wrapping add failed: %v", err)
		}
		if head.PostState != types.HashState(0) {
			t.Error("expected MaxUint64 + 1 to wrap to 0")
		}
	})

	t.Run("state_mismatch_rejected", func(t *testing.T) {
		h := NewHarness(t, newValidator(t))
		h.Genesis(10)
		h.MustReject(MakeBlock(11, 1), adder.ErrStateMismatch)

		// The chain continues from the untouched tip.
		if head := h.Add(1); head.Number != 1 {
			t.Errorf("expected #1 after rejection, got #%d", head.Number)
		}
	})

	t.Run("height_overflow_rejected", func(t *testing.T) {
		v := newValidator(t)
		parent := types.HeadData{Number: math.MaxUint64, PostState: types.HashState(0)}
		_, err := validate(t, v, parent, MakeBlock(0, 1))
		if !errors.Is(err, adder.ErrHeightOverflow) {
			t.Fatalf("expected ErrHeightOverflow, got %v", err)
		}
	})

	t.Run("malformed_input", func(t *testing.T) {
		v := newValidator(t)
		genesis := stf.Genesis(0).Encode()
		block := MakeBlock(0, 1).Encode()

		cases := map[string]types.ValidationParams{
			"empty":          {},
			"short_head":     {ParentHead: genesis[:types.HeadSize-1], BlockData: block},
			"long_head":      {ParentHead: append(append([]byte(nil), genesis...), 0), BlockData: block},
			"short_block":    {ParentHead: genesis, BlockData: block[:types.BlockDataSize-1]},
			"trailing_block": {ParentHead: genesis, BlockData: append(append([]byte(nil), block...), 0)},
		}
		for name, params := range cases {
			_, err := v.Validate(context.Background(), params)
			if _, ok := adder.IsMalformed(err); !ok {
				t.Errorf("%s: expected MalformedError, got %v", name, err)
			}
			if adder.IsRejected(err) {
				t.Errorf("%s: malformed input reported as rejection", name)
			}
		}
	})

	t.Run("agrees_with_reference", func(t *testing.T) {
		v := newValidator(t)
		parent := stf.Genesis(1 << 40)
		parent.Number = 1000

		for _, block := range []types.BlockData{
			MakeBlock(1<<40, 0),
			MakeBlock(1<<40, 12345),
			MakeBlock(1<<40, math.MaxUint64),
			MakeBlock(1<<40+1, 1),
		} {
			params := types.NewValidationParams(parent, block)
			want, wantErr := stf.Validator{}.Validate(context.Background(), params)
			got, gotErr := v.Validate(context.Background(), params)

			if adder.CodeOf(gotErr) != adder.CodeOf(wantErr) {
				t.Errorf("%+v: code %s, reference %s", block, adder.CodeOf(gotErr), adder.CodeOf(wantErr))
			}
			if !bytes.Equal(got.HeadData, want.HeadData) {
				t.Errorf("%+v: head differs from reference", block)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		v1 := newValidator(t)
		v2 := newValidator(t)
		params := types.NewValidationParams(stf.Genesis(3), MakeBlock(3, 39))

		r1, err1 := v1.Validate(context.Background(), params)
		r2, err2 := v2.Validate(context.Background(), params)
		r3, err3 := v1.Validate(context.Background(), params)
		if err1 != nil || err2 != nil || err3 != nil {
			t.Fatalf("unexpected errors: %v, %v, %v", err1, err2, err3)
		}
		if !bytes.Equal(r1.HeadData, r2.HeadData) || !bytes.Equal(r1.HeadData, r3.HeadData) {
			t.Error("non-deterministic result")
		}
	})

	t.Run("no_state_between_calls", func(t *testing.T) {
		v := newValidator(t)
		good := types.NewValidationParams(stf.Genesis(7), MakeBlock(7, 1))

		first, err := v.Validate(context.Background(), good)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = v.Validate(context.Background(), types.ValidationParams{ParentHead: []byte{0xff}})
		_, _ = v.Validate(context.Background(), types.NewValidationParams(stf.Genesis(7), MakeBlock(8, 1)))

		again, err := v.Validate(context.Background(), good)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.HeadData, again.HeadData) {
			t.Error("result changed after intervening calls")
		}
	})

	t.Run("chain_property", func(t *testing.T) {
		h := NewHarness(t, newValidator(t))
		h.GenesisDefault()

		adds := []uint64{1, 2, math.MaxUint64, 1 << 63, 1 << 63, 17, 0, 99, 5, 6}
		var sum uint64
		var head types.HeadData
		for _, add := range adds {
			head = h.Add(add)
			sum += add
		}

		if head.Number != uint64(len(adds)) {
			t.Errorf("expected #%d, got #%d", len(adds), head.Number)
		}
		if head.PostState != types.HashState(sum) {
			t.Errorf("expected post state hash(%d)", sum)
		}

		// Every stored head links to its parent.
		for n := uint64(1); n <= head.Number; n++ {
			parent, _, _ := h.Importer().HeadAt(n - 1)
			child, _, _ := h.Importer().HeadAt(n)
			if child.ParentHash != parent.Hash() {
				t.Errorf("#%d does not link to #%d", n, n-1)
			}
		}
	})

	t.Run("concurrent_validate", func(t *testing.T) {
		v := newValidator(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(state uint64) {
				defer wg.Done()
				head, err := validate(t, v, stf.Genesis(state), MakeBlock(state, state))
				if err != nil {
					t.Errorf("concurrent Validate failed: %v", err)
					return
				}
				if head.PostState != types.HashState(2*state) {
					t.Errorf("state %d: wrong post state", state)
				}
			}(uint64(i))
		}
		wg.Wait()
	})
}
