// Package types defines the records exchanged across the adder
// validation boundary.
//
// HeadData and BlockData have a canonical, fixed-width little-endian
// encoding (see Encode/Decode) which is what every content hash is
// computed over. The cramberry struct tags are used only by the
// transport packages; they never influence a hash.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
)

// HashSize is the size of a content hash in bytes.
const HashSize = 32

// Hash is a 32-byte Keccak-256 digest.
type Hash [HashSize]byte

// NewHash creates a Hash from bytes, returning an error if the length
// is wrong. Use for untrusted input.
func NewHash(data []byte) (Hash, error) {
	var h Hash
	if len(data) != HashSize {
		return h, errors.Errorf("hash must be %d bytes, got %d", HashSize, len(data))
	}
	copy(h[:], data)
	return h, nil
}

// MustNewHash creates a Hash, panicking if invalid.
// Use only for trusted internal data.
func MustNewHash(data []byte) Hash {
	h, err := NewHash(data)
	if err != nil {
		panic(err)
	}
	return h
}

// ParseHash decodes a hex string (with or without 0x prefix).
func ParseHash(s string) (Hash, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, errors.Wrap(err, "parse hash")
	}
	return NewHash(raw)
}

// IsZero returns true if every byte of the hash is zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Format prints the hash in hex for %v, %s and %x.
func (h Hash) Format(f fmt.State, verb rune) {
	switch verb {
	case 'x', 's', 'v':
		fmt.Fprint(f, h.String())
	default:
		fmt.Fprintf(f, "%%!%c(types.Hash=%s)", verb, h.String())
	}
}
