package abi

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Compact integer modes, selected by the two low bits of the first byte.
const (
	modeSingle = 0b00 // 6-bit value in one byte
	modeTwo    = 0b01 // 14-bit value in two bytes
	modeFour   = 0b10 // 30-bit value in four bytes
	modeBig    = 0b11 // (upper 6 bits + 4) bytes follow

	maxSingle = 1<<6 - 1
	maxTwo    = 1<<14 - 1
	maxFour   = 1<<30 - 1
)

// Compact decoding errors.
var (
	ErrNonCanonical = errors.New("non-canonical compact integer")
	ErrTooLarge     = errors.New("compact integer exceeds 32 bits")
)

// AppendCompact appends the SCALE compact encoding of v to dst.
func AppendCompact(dst []byte, v uint32) []byte {
	switch {
	case v <= maxSingle:
		return append(dst, byte(v<<2)|modeSingle)
	case v <= maxTwo:
		return binary.LittleEndian.AppendUint16(dst, uint16(v<<2)|modeTwo)
	case v <= maxFour:
		return binary.LittleEndian.AppendUint32(dst, v<<2|modeFour)
	default:
		// Upper six bits hold the byte count minus four.
		dst = append(dst, modeBig)
		return binary.LittleEndian.AppendUint32(dst, v)
	}
}

// CompactSize returns the number of bytes AppendCompact writes for v.
func CompactSize(v uint32) int {
	switch {
	case v <= maxSingle:
		return 1
	case v <= maxTwo:
		return 2
	case v <= maxFour:
		return 4
	default:
		return 5
	}
}

// ReadCompact decodes a compact integer from the front of data and
// returns the value and the number of bytes consumed. Only the
// minimal encoding of each value is accepted.
func ReadCompact(data []byte) (uint32, int, error) {
	if len(data) == 0 {
		return 0, 0, errors.WithStack(ErrTruncated)
	}

	switch data[0] & 0b11 {
	case modeSingle:
		return uint32(data[0] >> 2), 1, nil
	case modeTwo:
		if len(data) < 2 {
			return 0, 0, errors.WithStack(ErrTruncated)
		}
		v := uint32(binary.LittleEndian.Uint16(data) >> 2)
		if v <= maxSingle {
			return 0, 0, errors.WithStack(ErrNonCanonical)
		}
		return v, 2, nil
	case modeFour:
		if len(data) < 4 {
			return 0, 0, errors.WithStack(ErrTruncated)
		}
		v := binary.LittleEndian.Uint32(data) >> 2
		if v <= maxTwo {
			return 0, 0, errors.WithStack(ErrNonCanonical)
		}
		return v, 4, nil
	default:
		n := int(data[0]>>2) + 4
		if n > 4 {
			return 0, 0, errors.WithStack(ErrTooLarge)
		}
		if len(data) < 1+n {
			return 0, 0, errors.WithStack(ErrTruncated)
		}
		v := binary.LittleEndian.Uint32(data[1:])
		if v <= maxFour {
			return 0, 0, errors.WithStack(ErrNonCanonical)
		}
		return v, 1 + n, nil
	}
}
