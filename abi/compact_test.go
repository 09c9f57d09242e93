package abi

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCompactVectors(t *testing.T) {
	requireT := require.New(t)

	cases := []struct {
		v   uint32
		enc []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x04}},
		{16, []byte{0x40}},
		{63, []byte{0xfc}},
		{64, []byte{0x01, 0x01}},
		{72, []byte{0x21, 0x01}},
		{16383, []byte{0xfd, 0xff}},
		{16384, []byte{0x02, 0x00, 0x01, 0x00}},
		{1<<30 - 1, []byte{0xfe, 0xff, 0xff, 0xff}},
		{1 << 30, []byte{0x03, 0x00, 0x00, 0x00, 0x40}},
		{math.MaxUint32, []byte{0x03, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, c := range cases {
		enc := AppendCompact(nil, c.v)
		requireT.Equal(c.enc, enc, "encode %d", c.v)
		requireT.Equal(len(enc), CompactSize(c.v))

		v, n, err := ReadCompact(append(enc, 0xaa))
		requireT.NoError(err)
		requireT.Equal(c.v, v)
		requireT.Equal(len(enc), n)
	}
}

func TestCompactNonCanonical(t *testing.T) {
	requireT := require.New(t)

	for _, enc := range [][]byte{
		{0x01, 0x00},                   // 0 in two bytes
		{0xfd, 0x00},                   // 63 in two bytes
		{0x02, 0x00, 0x00, 0x00},       // 0 in four bytes
		{0xfe, 0xff, 0x00, 0x00},       // 16383 in four bytes
		{0x03, 0xff, 0xff, 0xff, 0x3f}, // 2^30-1 in big mode
	} {
		_, _, err := ReadCompact(enc)
		requireT.ErrorIs(err, ErrNonCanonical, "%x", enc)
	}
}

func TestCompactErrors(t *testing.T) {
	requireT := require.New(t)

	_, _, err := ReadCompact(nil)
	requireT.ErrorIs(err, ErrTruncated)

	_, _, err = ReadCompact([]byte{0x01})
	requireT.ErrorIs(err, ErrTruncated)

	_, _, err = ReadCompact([]byte{0x02, 0x00, 0x01})
	requireT.ErrorIs(err, ErrTruncated)

	_, _, err = ReadCompact([]byte{0x03, 0xff, 0xff})
	requireT.ErrorIs(err, ErrTruncated)

	// Five value bytes would exceed 32 bits.
	_, _, err = ReadCompact([]byte{0x07, 0, 0, 0, 0, 1})
	requireT.ErrorIs(err, ErrTooLarge)
	requireT.True(errors.Is(err, ErrTooLarge))
}
