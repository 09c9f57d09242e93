// Package entry is the sandboxed validation entry point.
//
// The host writes an encoded parameter block into the validator's
// memory and calls the entry point with its (offset, length). The
// validator decodes the parent head and the block body, runs the
// transition and writes the encoded result into its arena, returning
// the result's location in the same memory.
//
// Validate reports every failure as an error. Call is the raw sandbox
// convention: it has no error channel, so any failure aborts the
// invocation and no result is produced.
package entry

import (
	"os"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/abi"
	"github.com/blockberries/adder/sandbox"
	"github.com/blockberries/adder/stf"
	"github.com/blockberries/adder/types"
)

// AbortExitCode is the exit status Abort terminates the process with.
const AbortExitCode = 134

// AbortFunc ends an invocation that cannot produce a result. It must
// not return.
type AbortFunc func(err error)

// Abort terminates the process immediately. Deferred calls do not run
// and nothing is written to the result area.
func Abort(error) {
	os.Exit(AbortExitCode)
}

// Entry binds the entry point to its memory and arena.
type Entry struct {
	mem   *sandbox.Memory
	arena *sandbox.Arena
	abort AbortFunc
}

// New creates an entry point. A nil abort selects Abort.
func New(mem *sandbox.Memory, arena *sandbox.Arena, abort AbortFunc) *Entry {
	if abort == nil {
		abort = Abort
	}
	return &Entry{mem: mem, arena: arena, abort: abort}
}

// Validate validates the parameter block at [offset, offset+length) and
// returns the location of the encoded result.
//
// Input that cannot be read or decoded, or a result that does not fit
// the arena, yields a *adder.MalformedError. A well-formed block that
// breaks the transition rule yields the rejection from stf.Execute.
func (e *Entry) Validate(offset, length uint32) (uint32, uint32, error) {
	raw, err := e.mem.Read(offset, length)
	if err != nil {
		return 0, 0, adder.NewMalformedError("read params", err)
	}

	params, err := abi.DecodeParams(raw)
	if err != nil {
		return 0, 0, adder.NewMalformedError("decode params", err)
	}

	parent, err := types.DecodeHead(params.ParentHead)
	if err != nil {
		return 0, 0, adder.NewMalformedError("decode parent head", err)
	}

	block, err := types.DecodeBlockData(params.BlockData)
	if err != nil {
		return 0, 0, adder.NewMalformedError("decode block data", err)
	}

	// The parent is identified by the bytes the host supplied.
	parentHash := types.Keccak256(params.ParentHead)

	head, err := stf.Execute(parentHash, parent, block)
	if err != nil {
		return 0, 0, err
	}

	result := types.ValidationResult{HeadData: head.Encode()}
	size := uint32(abi.ResultSize(result))

	out, buf, err := e.arena.Bytes(size)
	if err != nil {
		return 0, 0, adder.NewMalformedError("allocate result", err)
	}
	abi.EncodeResultTo(buf, result)

	return out, size, nil
}

// Call runs Validate and returns the packed result location. On any
// failure it calls the abort function instead; if that returns, Call
// returns 0, which no host reads as a result.
func (e *Entry) Call(offset, length uint32) uint64 {
	out, size, err := e.Validate(offset, length)
	if err != nil {
		e.abort(err)
		return 0
	}
	return sandbox.Pack(out, size)
}
