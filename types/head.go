package types

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// HeadSize is the size of an encoded HeadData.
	HeadSize = 8 + HashSize + HashSize
	// BlockDataSize is the size of an encoded BlockData.
	BlockDataSize = 8 + 8
)

// Codec errors.
var (
	ErrTruncated     = errors.New("truncated input")
	ErrTrailingBytes = errors.New("trailing bytes after record")
)

// HeadData is the authenticated summary of the chain at one height.
type HeadData struct {
	// Block number.
	Number uint64 `cramberry:"1"`
	// Hash of the parent head.
	ParentHash Hash `cramberry:"2"`
	// Hash of the state after this block.
	PostState Hash `cramberry:"3"`
}

// Encode returns the canonical encoding:
// number (u64 LE) ‖ parent_hash ‖ post_state.
func (h HeadData) Encode() []byte {
	buf := make([]byte, HeadSize)
	h.EncodeTo(buf)
	return buf
}

// EncodeTo writes the canonical encoding into dst, which must be at
// least HeadSize bytes long.
func (h HeadData) EncodeTo(dst []byte) {
	_ = dst[HeadSize-1]
	binary.LittleEndian.PutUint64(dst[0:8], h.Number)
	copy(dst[8:8+HashSize], h.ParentHash[:])
	copy(dst[8+HashSize:HeadSize], h.PostState[:])
}

// Hash returns the content hash of the head.
func (h HeadData) Hash() Hash {
	var buf [HeadSize]byte
	h.EncodeTo(buf[:])
	return Keccak256(buf[:])
}

func (h HeadData) String() string {
	return fmt.Sprintf("Head{#%d parent=%s post=%s}", h.Number, h.ParentHash, h.PostState)
}

// DecodeHead decodes a canonical head. The input must be exactly
// HeadSize bytes.
func DecodeHead(data []byte) (HeadData, error) {
	if len(data) < HeadSize {
		return HeadData{}, errors.Wrapf(ErrTruncated, "head: need %d bytes, got %d", HeadSize, len(data))
	}
	if len(data) > HeadSize {
		return HeadData{}, errors.Wrapf(ErrTrailingBytes, "head: %d extra bytes", len(data)-HeadSize)
	}
	var h HeadData
	h.Number = binary.LittleEndian.Uint64(data[0:8])
	copy(h.ParentHash[:], data[8:8+HashSize])
	copy(h.PostState[:], data[8+HashSize:HeadSize])
	return h, nil
}

// BlockData is the body of a proposed transition.
type BlockData struct {
	// State to begin from.
	State uint64 `cramberry:"1"`
	// Amount to add, wrapping on overflow.
	Add uint64 `cramberry:"2"`
}

// Encode returns the canonical encoding: state (u64 LE) ‖ add (u64 LE).
func (b BlockData) Encode() []byte {
	buf := make([]byte, BlockDataSize)
	binary.LittleEndian.PutUint64(buf[0:8], b.State)
	binary.LittleEndian.PutUint64(buf[8:16], b.Add)
	return buf
}

// DecodeBlockData decodes a canonical block body. The input must be
// exactly BlockDataSize bytes.
func DecodeBlockData(data []byte) (BlockData, error) {
	if len(data) < BlockDataSize {
		return BlockData{}, errors.Wrapf(ErrTruncated, "block data: need %d bytes, got %d", BlockDataSize, len(data))
	}
	if len(data) > BlockDataSize {
		return BlockData{}, errors.Wrapf(ErrTrailingBytes, "block data: %d extra bytes", len(data)-BlockDataSize)
	}
	return BlockData{
		State: binary.LittleEndian.Uint64(data[0:8]),
		Add:   binary.LittleEndian.Uint64(data[8:16]),
	}, nil
}
