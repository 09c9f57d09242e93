//go:build wasip1

// Command adder-wasm is the adder validation function as a WebAssembly
// reactor module.
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o adder.wasm ./cmd/adder-wasm
//
// The host calls input(length) to obtain the address of the input
// region, writes the encoded parameter block there and calls
// validate(offset, length). The result comes back as a packed
// (offset, length) pair pointing into the module's memory. Any failure
// terminates the module, which the host observes as a trap.
package main

import (
	"unsafe"

	"github.com/blockberries/adder/entry"
	"github.com/blockberries/adder/sandbox"
)

const (
	inputSize = 64 << 10
	arenaSize = 4 << 10
)

// Input region followed by the result arena. The array is static, so
// its address in linear memory never changes.
var buf [inputSize + arenaSize]byte

var (
	mem   = sandbox.Wrap(uint32(uintptr(unsafe.Pointer(&buf[0]))), buf[:])
	arena = mustArena()
	ep    = entry.New(mem, arena, entry.Abort)
)

func mustArena() *sandbox.Arena {
	a, err := sandbox.NewArena(mem, mem.Base()+inputSize, arenaSize)
	if err != nil {
		panic(err)
	}
	return a
}

//go:wasmexport input
func input(length uint32) uint32 {
	if length > inputSize {
		entry.Abort(sandbox.ErrOutOfBounds)
	}
	return mem.Base()
}

//go:wasmexport validate
func validate(offset, length uint32) uint64 {
	arena.Reset()
	return ep.Call(offset, length)
}

func main() {}
