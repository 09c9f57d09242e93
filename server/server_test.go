package server

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/logging"
	"github.com/blockberries/adder/types"
)

// testValidator returns a fixed result for every call.
type testValidator struct {
	res    types.ValidationResult
	err    error
	closed bool
}

func (v *testValidator) Validate(_ context.Context, _ types.ValidationParams) (types.ValidationResult, error) {
	return v.res, v.err
}

func (v *testValidator) Close() error {
	v.closed = true
	return nil
}

func TestServer_Accepted(t *testing.T) {
	head := types.HeadData{Number: 1}.Encode()
	srv := New(&testValidator{res: types.ValidationResult{HeadData: head}}, nil)

	outcome := srv.Validate(context.Background(), types.ValidationParams{})
	if !outcome.OK() {
		t.Fatalf("expected OK, got %s", outcome.Code)
	}
	if !bytes.Equal(outcome.HeadData, head) {
		t.Error("expected head data to be passed through")
	}
	if outcome.Info != "" {
		t.Errorf("expected no info, got %q", outcome.Info)
	}

	stats := srv.Stats()
	if stats.Validated != 1 || stats.Total() != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestServer_Classification(t *testing.T) {
	cases := []struct {
		err    error
		code   types.Code
		status types.Status
	}{
		{adder.ErrStateMismatch, types.CodeStateMismatch, types.StatusRejected},
		{adder.ErrParentHashMismatch, types.CodeParentHashMismatch, types.StatusRejected},
		{adder.ErrHeightOverflow, types.CodeHeightOverflow, types.StatusRejected},
		{adder.NewMalformedError("decode params", errors.New("truncated")), types.CodeMalformed, types.StatusMalformed},
		{context.DeadlineExceeded, types.CodeMalformed, types.StatusMalformed},
	}

	for _, c := range cases {
		srv := New(&testValidator{err: c.err}, nil)
		outcome := srv.Validate(context.Background(), types.ValidationParams{})

		if outcome.Code != c.code {
			t.Errorf("%v: expected code %s, got %s", c.err, c.code, outcome.Code)
		}
		if outcome.Code.Status() != c.status {
			t.Errorf("%v: expected status %s", c.err, c.status)
		}
		if outcome.HeadData != nil {
			t.Errorf("%v: expected no head data", c.err)
		}
		if outcome.Info != c.err.Error() {
			t.Errorf("%v: expected info %q, got %q", c.err, c.err.Error(), outcome.Info)
		}
	}
}

func TestServer_Logging(t *testing.T) {
	color.NoColor = true

	var out, errOut bytes.Buffer
	logger := logging.New(&out, &errOut, logging.LevelInfo)

	New(&testValidator{err: adder.ErrStateMismatch}, logger).Validate(context.Background(), types.ValidationParams{})
	if !strings.Contains(out.String(), "[WARN] ") || !strings.Contains(out.String(), "state mismatch") {
		t.Errorf("expected rejection at warn, got %q", out.String())
	}

	New(&testValidator{err: adder.NewMalformedError("read params", errors.New("oob"))}, logger).Validate(context.Background(), types.ValidationParams{})
	if !strings.Contains(errOut.String(), "[ERROR] ") || !strings.Contains(errOut.String(), "read params") {
		t.Errorf("expected malformed input at error, got %q", errOut.String())
	}
}

func TestServer_StatsConcurrent(t *testing.T) {
	ok := New(&testValidator{}, nil)
	bad := &testValidator{err: adder.ErrStateMismatch}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok.Validate(context.Background(), types.ValidationParams{})
		}()
	}
	wg.Wait()

	if got := ok.Stats().Validated; got != 50 {
		t.Errorf("expected 50 validated, got %d", got)
	}

	srv := New(bad, nil)
	srv.Validate(context.Background(), types.ValidationParams{})
	srv.Validate(context.Background(), types.ValidationParams{})
	if stats := srv.Stats(); stats.Rejected != 2 || stats.Validated != 0 || stats.Malformed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestServer_Close(t *testing.T) {
	v := &testValidator{}
	srv := New(v, nil)
	if srv.Validator() != v {
		t.Error("expected Validator to return the wrapped validator")
	}
	if err := srv.Close(); err != nil {
		t.Fatal(err)
	}
	if !v.closed {
		t.Error("expected Close to close the wrapped connection")
	}
}
