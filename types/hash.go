package types

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// StateSize is the size of the canonical state encoding in bytes.
const StateSize = 8

// Keccak256 computes the Keccak-256 digest (legacy Keccak padding,
// as used by Ethereum) of the concatenation of data.
func Keccak256(data ...[]byte) Hash {
	var h Hash
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// EncodeState returns the canonical encoding of a state value.
func EncodeState(state uint64) [StateSize]byte {
	var buf [StateSize]byte
	binary.LittleEndian.PutUint64(buf[:], state)
	return buf
}

// HashState commits to a state value.
func HashState(state uint64) Hash {
	buf := EncodeState(state)
	return Keccak256(buf[:])
}
