package sandbox

// Pack joins an (offset, length) pair into the single return value of
// the entry point: offset in the low 32 bits, length in the high 32.
func Pack(offset, length uint32) uint64 {
	return uint64(offset) | uint64(length)<<32
}

// Unpack splits a value produced by Pack.
func Unpack(v uint64) (offset, length uint32) {
	return uint32(v), uint32(v >> 32)
}
