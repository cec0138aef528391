package packet

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
)

// Reader walks one inbound packet body. Every Pop method is safe past the
// end of the buffer and returns a zero value there.
type Reader struct {
	data string
	pos  int
}

// NewReader returns a reader over body (the payload without its header).
func NewReader(body string) *Reader {
	return &Reader{data: body}
}

// Split separates a raw payload into its two character header id and body.
// Payloads shorter than a header yield ok == false.
func Split(payload string) (id int, body string, ok bool) {
	if len(payload) < vl64.HeaderLength {
		return 0, "", false
	}
	return vl64.DecodeB64(payload[:vl64.HeaderLength]), payload[vl64.HeaderLength:], true
}

// PopString reads up to the next field separator.
func (r *Reader) PopString() string {
	return r.PopStringUntil(FieldSeparator)
}

// PopStringUntil reads up to the next delim and consumes the delimiter. A
// missing delimiter returns the remainder of the buffer.
func (r *Reader) PopStringUntil(delim byte) string {
	if r.pos >= len(r.data) {
		return ""
	}

	rest := r.data[r.pos:]
	idx := strings.IndexByte(rest, delim)
	if idx < 0 {
		r.pos = len(r.data)
		return rest
	}

	r.pos += idx + 1
	return rest[:idx]
}

// PopFixedString reads n bytes, clamped to what is left.
func (r *Reader) PopFixedString(n int) string {
	if n <= 0 || r.pos >= len(r.data) {
		return ""
	}

	end := r.pos + n
	if end > len(r.data) {
		end = len(r.data)
	}

	s := r.data[r.pos:end]
	r.pos = end
	return s
}

// PopLengthPrefixedString reads a two character B64 length followed by that
// many bytes.
func (r *Reader) PopLengthPrefixedString() string {
	n := vl64.DecodeB64(r.PopFixedString(vl64.HeaderLength))
	return r.PopFixedString(n)
}

// PopVarInt reads one VL64 integer. ok is false when nothing was left to read
// or the value was malformed.
func (r *Reader) PopVarInt() (int, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}

	rest := r.data[r.pos:]
	want := int(rest[0]>>3) & 7
	v, n := vl64.Decode(rest)
	r.pos += n

	return v, want > 0 && want == n
}

// PopB64 reads a fixed width B64 integer.
func (r *Reader) PopB64(width int) int {
	return vl64.DecodeB64(r.PopFixedString(width))
}

// PopInt reads decimal digits up to delim. Non-numeric content yields
// (0, false) and the field is still consumed.
func (r *Reader) PopInt(delim byte) (int, bool) {
	field := r.PopStringUntil(delim)
	v, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil {
		return 0, false
	}
	return v, true
}

// PopBool reads one character and reports whether it is a true sentinel.
func (r *Reader) PopBool() bool {
	c, ok := r.PopChar()
	return ok && (c == TrueVL64 || c == TrueB64)
}

// PopChar reads a single byte.
func (r *Reader) PopChar() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	c := r.data[r.pos]
	r.pos++
	return c, true
}

// Skip advances by n bytes, clamped to the buffer.
func (r *Reader) Skip(n int) {
	if n <= 0 {
		return
	}
	r.pos += n
	if r.pos > len(r.data) {
		r.pos = len(r.data)
	}
}

// Remaining returns everything not yet read without consuming it.
func (r *Reader) Remaining() string {
	if r.pos >= len(r.data) {
		return ""
	}
	return r.data[r.pos:]
}

// Reset rewinds to the start of the body.
func (r *Reader) Reset() {
	r.pos = 0
}
