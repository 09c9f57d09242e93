// Package addertest provides test utilities for adder validators and
// hosts, including a configurable mock, an import harness and a
// validator compliance test suite.
package addertest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/stf"
	"github.com/blockberries/adder/types"
)

// Compile-time interface check.
var _ adder.Connection = (*MockValidator)(nil)

// MockValidator is a configurable validator for host testing. If
// ValidateFn is nil, calls go to the reference stf.Validator.
type MockValidator struct {
	ValidateFn func(context.Context, types.ValidationParams) (types.ValidationResult, error)
	CloseFn    func() error

	// Call counters (atomic for concurrent access).
	ValidateCalls atomic.Int64
	CloseCalls    atomic.Int64
}

func (m *MockValidator) Validate(ctx context.Context, params types.ValidationParams) (types.ValidationResult, error) {
	m.ValidateCalls.Add(1)
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, params)
	}
	return stf.Validator{}.Validate(ctx, params)
}

func (m *MockValidator) Close() error {
	m.CloseCalls.Add(1)
	if m.CloseFn != nil {
		return m.CloseFn()
	}
	return nil
}

// Failing returns a mock that fails every call with err.
func Failing(err error) *MockValidator {
	return &MockValidator{
		ValidateFn: func(context.Context, types.ValidationParams) (types.ValidationResult, error) {
			return types.ValidationResult{}, err
		},
	}
}
