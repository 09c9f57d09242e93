// Package local provides an in-process validator connection.
//
// The connection owns the fixed memory and arena the sandboxed entry
// point runs with and drives it exactly as a sandbox host would: it
// writes the encoded parameter block into the input region, calls the
// entry point and reads the result back out. Calls are serialised and
// the arena is reset before each one, so no state survives between
// invocations.
package local

import (
	"context"
	"errors"
	"sync"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/abi"
	"github.com/blockberries/adder/config"
	"github.com/blockberries/adder/entry"
	"github.com/blockberries/adder/sandbox"
	"github.com/blockberries/adder/types"
)

// Compile-time interface check.
var _ adder.Connection = (*Connection)(nil)

// ErrClosed is returned by Validate after Close.
var ErrClosed = errors.New("local: connection closed")

// Connection runs the entry point over its own fixed memory.
type Connection struct {
	mu sync.Mutex

	mem         *sandbox.Memory
	arena       *sandbox.Arena
	entry       *entry.Entry
	inputOffset uint32
	inputSize   uint32
	closed      bool
}

// NewConnection creates an in-process connection with the memory
// layout described by cfg.
func NewConnection(cfg *config.Config) (*Connection, error) {
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}

	mem := sandbox.NewMemory(0, cfg.MemorySize)
	arena, err := sandbox.NewArena(mem, cfg.ArenaOffset(), cfg.ArenaSize)
	if err != nil {
		return nil, err
	}

	return &Connection{
		mem:         mem,
		arena:       arena,
		entry:       entry.New(mem, arena, nil),
		inputOffset: cfg.InputOffset,
		inputSize:   cfg.InputSize,
	}, nil
}

// Validate implements adder.Validator.
func (c *Connection) Validate(ctx context.Context, params types.ValidationParams) (types.ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return types.ValidationResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return types.ValidationResult{}, ErrClosed
	}

	c.arena.Reset()
	defer c.clearInput()

	enc := abi.EncodeParams(params)
	if uint64(len(enc)) > uint64(c.inputSize) {
		return types.ValidationResult{}, adder.NewMalformedError("write params", sandbox.ErrOutOfBounds)
	}
	if err := c.mem.Write(c.inputOffset, enc); err != nil {
		return types.ValidationResult{}, adder.NewMalformedError("write params", err)
	}

	offset, length, err := c.entry.Validate(c.inputOffset, uint32(len(enc)))
	if err != nil {
		return types.ValidationResult{}, err
	}

	raw, err := c.mem.Read(offset, length)
	if err != nil {
		return types.ValidationResult{}, adder.NewMalformedError("read result", err)
	}
	res, err := abi.DecodeResult(raw)
	if err != nil {
		return types.ValidationResult{}, adder.NewMalformedError("decode result", err)
	}

	// The result aliases memory the next call overwrites.
	return types.ValidationResult{HeadData: append([]byte(nil), res.HeadData...)}, nil
}

func (c *Connection) clearInput() {
	_ = c.mem.Zero(c.inputOffset, c.inputSize)
}

// Close releases the connection. Further calls fail with ErrClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
