package adder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/blockberries/adder/types"
)

func TestMalformedError(t *testing.T) {
	err := NewMalformedError("decode head", errors.New("truncated input"))
	if err.Op != "decode head" {
		t.Errorf("unexpected op: %s", err.Op)
	}

	expected := "malformed input: decode head: truncated input"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIsMalformed(t *testing.T) {
	inner := errors.New("out of bounds")
	mErr := NewMalformedError("read params", inner)

	// Direct.
	m, ok := IsMalformed(mErr)
	if !ok {
		t.Fatal("expected IsMalformed to return true")
	}
	if m.Op != "read params" {
		t.Errorf("expected op 'read params', got %q", m.Op)
	}
	if !errors.Is(mErr, inner) {
		t.Error("expected MalformedError to unwrap to its cause")
	}

	// Wrapped.
	wrapped := fmt.Errorf("wrapped: %w", mErr)
	if _, ok := IsMalformed(wrapped); !ok {
		t.Fatal("expected IsMalformed to unwrap wrapped error")
	}

	// Rejection is not malformed.
	if _, ok := IsMalformed(ErrStateMismatch); ok {
		t.Fatal("expected IsMalformed to return false for a rejection")
	}

	// Nil.
	if _, ok := IsMalformed(nil); ok {
		t.Fatal("expected IsMalformed to return false for nil")
	}
}

func TestIsRejected(t *testing.T) {
	for _, err := range []error{ErrStateMismatch, ErrParentHashMismatch, ErrHeightOverflow} {
		if !IsRejected(err) {
			t.Errorf("expected %v to be a rejection", err)
		}
		if !IsRejected(fmt.Errorf("block 7: %w", err)) {
			t.Errorf("expected wrapped %v to be a rejection", err)
		}
	}
	if IsRejected(NewMalformedError("x", errors.New("y"))) {
		t.Error("malformed input must not count as a rejection")
	}
	if IsRejected(nil) {
		t.Error("nil must not count as a rejection")
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		code types.Code
	}{
		{nil, types.CodeOK},
		{ErrStateMismatch, types.CodeStateMismatch},
		{fmt.Errorf("ctx: %w", ErrParentHashMismatch), types.CodeParentHashMismatch},
		{ErrHeightOverflow, types.CodeHeightOverflow},
		{NewMalformedError("decode", errors.New("bad")), types.CodeMalformed},
		{errors.New("connection reset"), types.CodeMalformed},
	}
	for _, c := range cases {
		if got := CodeOf(c.err); got != c.code {
			t.Errorf("CodeOf(%v) = %s, want %s", c.err, got, c.code)
		}
	}
}

func TestErrorOf_RoundTrip(t *testing.T) {
	for _, err := range []error{ErrStateMismatch, ErrParentHashMismatch, ErrHeightOverflow} {
		got := ErrorOf(types.Outcome{Code: CodeOf(err)})
		if !errors.Is(got, err) {
			t.Errorf("ErrorOf(CodeOf(%v)) = %v", err, got)
		}
	}

	if ErrorOf(types.Outcome{Code: types.CodeOK}) != nil {
		t.Error("expected nil error for CodeOK")
	}

	got := ErrorOf(types.Outcome{Code: types.CodeMalformed, Info: "truncated input"})
	m, ok := IsMalformed(got)
	if !ok {
		t.Fatalf("expected MalformedError, got %v", got)
	}
	if m.Err.Error() != "truncated input" {
		t.Errorf("expected info to survive, got %q", m.Err.Error())
	}
}
