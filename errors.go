package adder

import (
	"errors"
	"fmt"

	"github.com/blockberries/adder/types"
)

// Rejections. The block was decoded but is not a valid successor.
var (
	// ErrStateMismatch: the claimed starting state does not hash to the
	// parent's recorded post-state.
	ErrStateMismatch = errors.New("state mismatch")
	// ErrParentHashMismatch: the supplied parent hash is not the hash
	// of the supplied parent head.
	ErrParentHashMismatch = errors.New("parent hash mismatch")
	// ErrHeightOverflow: the parent is at the maximum block number.
	ErrHeightOverflow = errors.New("block number overflow")
)

// MalformedError signals input the validator could not process at all:
// a decode failure, an out-of-bounds buffer or an exhausted arena.
//
// Inside the sandbox this condition aborts the call. Hosted callers
// receive it as an error so they can tell a validator fault apart from
// an invalid block.
type MalformedError struct {
	Op  string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed input: %s: %v", e.Op, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// NewMalformedError creates a new MalformedError.
func NewMalformedError(op string, err error) *MalformedError {
	return &MalformedError{Op: op, Err: err}
}

// IsMalformed checks whether an error is a MalformedError and returns it.
func IsMalformed(err error) (*MalformedError, bool) {
	var m *MalformedError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// IsRejected reports whether err is one of the rejection sentinels.
func IsRejected(err error) bool {
	return errors.Is(err, ErrStateMismatch) ||
		errors.Is(err, ErrParentHashMismatch) ||
		errors.Is(err, ErrHeightOverflow)
}

// CodeOf classifies the error returned by a Validator. Errors that are
// neither rejections nor MalformedError are reported as malformed:
// the validator could not reach a verdict.
func CodeOf(err error) types.Code {
	switch {
	case err == nil:
		return types.CodeOK
	case errors.Is(err, ErrStateMismatch):
		return types.CodeStateMismatch
	case errors.Is(err, ErrParentHashMismatch):
		return types.CodeParentHashMismatch
	case errors.Is(err, ErrHeightOverflow):
		return types.CodeHeightOverflow
	default:
		return types.CodeMalformed
	}
}

// ErrorOf maps an outcome received from a remote validator back to
// the error a local Validator would have returned. It returns nil for
// an accepted block.
func ErrorOf(o types.Outcome) error {
	switch o.Code {
	case types.CodeOK:
		return nil
	case types.CodeStateMismatch:
		return ErrStateMismatch
	case types.CodeParentHashMismatch:
		return ErrParentHashMismatch
	case types.CodeHeightOverflow:
		return ErrHeightOverflow
	default:
		return NewMalformedError("remote", errors.New(o.Info))
	}
}
