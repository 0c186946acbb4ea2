// Package packet builds and parses the fixed 34-byte framed packets used
// by both printer families (§4.2). Every packet, built or parsed, is
// exactly Size bytes; in built packets, bytes outside the documented
// fields are always zero (parsers do not check them).
package packet

// Size is the fixed length of every packet on the wire, for both families.
const Size = 34

// KodakMagic is the 4-byte header every Kodak packet starts with.
var KodakMagic = [4]byte{0x1B, 0x2A, 0x43, 0x41}

// CanonMagic is the big-endian 16-bit header every Canon packet starts with.
const CanonMagic uint16 = 0x430F

// ReverseBits6 reverses the low 6 bits of v and returns the result in the
// low 6 bits of the output (§4.2 "Battery-level decoding (Canon)"). It is
// its own inverse: ReverseBits6(ReverseBits6(v)) == v&0x3F for v in 0..63.
func ReverseBits6(v uint8) uint8 {
	v &= 0x3F
	var out uint8
	for i := 0; i < 6; i++ {
		out <<= 1
		out |= v & 1
		v >>= 1
	}
	return out
}
