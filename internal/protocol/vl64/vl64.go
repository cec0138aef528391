// Package vl64 implements the two integer encodings used on the client wire:
// the signed variable-length VL64 format and the fixed-width B64 format used
// for message headers and length prefixes.
//
// Every encoded byte lives in the 64..127 range, so an encoded value is always
// a plain string of single-byte characters.
package vl64

const (
	// base is added to every 6-bit chunk before it is put on the wire
	base = 64

	signBit   = 4
	countMask = 7
	lowMask   = 3
	chunkMask = 0x3f

	// MaxLength is the longest VL64 value the 3-bit byte count can describe
	MaxLength = 7
)

// Encode returns the VL64 representation of v.
//
// The first byte carries the byte count in bits 3-5, the sign in bit 2 and
// the two low bits of |v|. Each following byte carries the next 6 bits of
// the magnitude, least significant chunk first.
//
// The wire domain is int32, which takes at most six bytes. Magnitudes of
// 2^38 and above do not fit MaxLength bytes; their high bits are dropped
// and they do not round trip.
func Encode(v int) string {
	var buf [MaxLength]byte

	mag := int64(v)
	negative := mag < 0
	if negative {
		mag = -mag
	}

	buf[0] = byte(base + mag&lowMask)
	n := 1
	for mag >>= 2; mag != 0 && n < MaxLength; mag >>= 6 {
		buf[n] = byte(base + mag&chunkMask)
		n++
	}

	buf[0] |= byte(n << 3)
	if negative {
		buf[0] |= signBit
	}

	return string(buf[:n])
}

// Decode reads one VL64 value from the start of s. It returns the value and
// the number of bytes consumed.
//
// Decode never fails. Empty input yields (0, 0); a header that claims more
// bytes than s holds yields 0 and consumes the rest of s; a header with a
// zero byte count yields 0 and consumes that single byte.
func Decode(s string) (int, int) {
	if len(s) == 0 {
		return 0, 0
	}

	first := s[0]
	total := int(first>>3) & countMask
	if total == 0 {
		return 0, 1
	}
	if total > len(s) {
		return 0, len(s)
	}

	v := int64(first & lowMask)
	shift := uint(2)
	for i := 1; i < total; i++ {
		v |= int64(s[i]&chunkMask) << shift
		shift += 6
	}

	if first&signBit != 0 {
		v = -v
	}

	return int(v), total
}

// DecodeValue is Decode without the consumed length.
func DecodeValue(s string) int {
	v, _ := Decode(s)
	return v
}

// Length reports how many bytes the VL64 value starting at s occupies,
// clamped to len(s).
func Length(s string) int {
	if len(s) == 0 {
		return 0
	}
	total := int(s[0]>>3) & countMask
	if total == 0 {
		return 1
	}
	if total > len(s) {
		return len(s)
	}
	return total
}
