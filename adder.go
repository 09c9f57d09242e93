// Package adder defines the boundary between a host that imports
// blocks of the adder child-chain and the function that validates
// them.
//
// The chain tracks a single uint64 counter. A block claims the current
// counter value and a delta to add to it; the validator checks the
// claim against the parent head's state commitment and produces the
// successor head. The transition itself lives in package stf, the
// sandboxed entry point in package entry.
package adder

import (
	"context"

	"github.com/blockberries/adder/types"
)

// Validator validates a candidate block against its parent head.
//
// Validate receives the two sub-buffers exactly as the host holds
// them and returns the encoded successor head. A well-formed block
// that breaks the transition rule yields one of the rejection
// sentinels (ErrStateMismatch, ErrParentHashMismatch,
// ErrHeightOverflow). Input that cannot be decoded or does not fit
// the validator's fixed resources yields a *MalformedError.
//
// Implementations keep no state between calls: the result depends on
// params alone.
type Validator interface {
	Validate(ctx context.Context, params types.ValidationParams) (types.ValidationResult, error)
}

// Connection represents a transport-agnostic connection to a
// validator. Both the gRPC client and the in-process adapter
// implement it.
type Connection interface {
	Validator

	// Close terminates the connection.
	Close() error
}
