package vl64

// HeaderLength is the width of message headers and string length prefixes
const HeaderLength = 2

// EncodeB64 writes v as width characters, most significant 6-bit chunk
// first. Bits above 6*width are dropped.
func EncodeB64(v, width int) string {
	if width <= 0 {
		return ""
	}

	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint(6 * (width - 1 - i))
		buf[i] = byte(base + (v>>shift)&chunkMask)
	}

	return string(buf)
}

// DecodeB64 is the inverse of EncodeB64. Any character outside the B64
// alphabet makes the whole value 0.
func DecodeB64(s string) int {
	v := 0
	for i := 0; i < len(s); i++ {
		c := int(s[i]) - base
		if c < 0 || c > chunkMask {
			return 0
		}
		v = v<<6 | c
	}
	return v
}

// Header encodes a message id as a two character header.
func Header(id int) string {
	return EncodeB64(id, HeaderLength)
}
