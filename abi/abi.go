// Package abi encodes the buffers exchanged with the host across the
// sandbox boundary.
//
// Both records are SCALE-compatible: each byte vector is a compact
// length followed by the bytes.
//
//	params: compact(len(block_data)) ‖ block_data ‖ compact(len(parent_head)) ‖ parent_head
//	result: compact(len(head_data)) ‖ head_data
//
// Decoding never trusts a declared length: it is checked against the
// bytes actually left in the buffer before anything is sliced, and
// trailing bytes are rejected, so decode(encode(x)) == x and
// encode(decode(b)) == b for every accepted b.
package abi

import (
	"github.com/pkg/errors"

	"github.com/blockberries/adder/types"
)

// Decoding errors.
var (
	ErrTruncated     = errors.New("truncated buffer")
	ErrTrailingBytes = errors.New("trailing bytes in buffer")
)

// EncodeParams encodes a parameter block.
func EncodeParams(p types.ValidationParams) []byte {
	buf := make([]byte, 0, ParamsSize(p))
	buf = appendVec(buf, p.BlockData)
	buf = appendVec(buf, p.ParentHead)
	return buf
}

// ParamsSize returns the encoded size of a parameter block.
func ParamsSize(p types.ValidationParams) int {
	return vecSize(p.BlockData) + vecSize(p.ParentHead)
}

// DecodeParams decodes a parameter block. The returned slices alias
// data.
func DecodeParams(data []byte) (types.ValidationParams, error) {
	var p types.ValidationParams

	blockData, n, err := readVec(data)
	if err != nil {
		return p, errors.Wrap(err, "block data")
	}
	data = data[n:]

	parentHead, n, err := readVec(data)
	if err != nil {
		return p, errors.Wrap(err, "parent head")
	}
	data = data[n:]

	if len(data) != 0 {
		return p, errors.Wrapf(ErrTrailingBytes, "params: %d extra bytes", len(data))
	}

	p.BlockData = blockData
	p.ParentHead = parentHead
	return p, nil
}

// EncodeResult encodes a validation result.
func EncodeResult(r types.ValidationResult) []byte {
	return appendVec(make([]byte, 0, ResultSize(r)), r.HeadData)
}

// EncodeResultTo writes the encoded result into dst, which must be at
// least ResultSize(r) bytes long, and returns the bytes written.
func EncodeResultTo(dst []byte, r types.ValidationResult) int {
	n := len(AppendCompact(dst[:0], uint32(len(r.HeadData))))
	return n + copy(dst[n:], r.HeadData)
}

// ResultSize returns the encoded size of a validation result.
func ResultSize(r types.ValidationResult) int {
	return vecSize(r.HeadData)
}

// DecodeResult decodes a validation result. The returned slice aliases
// data.
func DecodeResult(data []byte) (types.ValidationResult, error) {
	head, n, err := readVec(data)
	if err != nil {
		return types.ValidationResult{}, errors.Wrap(err, "head data")
	}
	if n != len(data) {
		return types.ValidationResult{}, errors.Wrapf(ErrTrailingBytes, "result: %d extra bytes", len(data)-n)
	}
	return types.ValidationResult{HeadData: head}, nil
}

func appendVec(dst, v []byte) []byte {
	dst = AppendCompact(dst, uint32(len(v)))
	return append(dst, v...)
}

func vecSize(v []byte) int {
	return CompactSize(uint32(len(v))) + len(v)
}

func readVec(data []byte) ([]byte, int, error) {
	length, n, err := ReadCompact(data)
	if err != nil {
		return nil, 0, err
	}
	if uint64(length) > uint64(len(data)-n) {
		return nil, 0, errors.Wrapf(ErrTruncated, "declared %d bytes, %d available", length, len(data)-n)
	}
	end := n + int(length)
	return data[n:end:end], end, nil
}
