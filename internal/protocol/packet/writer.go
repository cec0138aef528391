package packet

import (
	"strconv"
	"strings"

	"github.com/KirkDiggler/room-server/internal/protocol/vl64"
)

// Writer accumulates one outbound packet. All methods return the writer so
// calls can be chained.
type Writer struct {
	buf strings.Builder
}

// NewWriter starts a packet with the given message id as its header.
func NewWriter(id int) *Writer {
	w := &Writer{}
	w.buf.WriteString(vl64.Header(id))
	return w
}

// NewRawWriter starts an empty buffer with no header, for assembling
// fragments that are appended to other packets.
func NewRawWriter() *Writer {
	return &Writer{}
}

// Append writes s unchanged.
func (w *Writer) Append(s string) *Writer {
	w.buf.WriteString(s)
	return w
}

// AppendByte writes a single raw byte.
func (w *Writer) AppendByte(b byte) *Writer {
	w.buf.WriteByte(b)
	return w
}

// AppendInt writes v VL64 encoded.
func (w *Writer) AppendInt(v int) *Writer {
	w.buf.WriteString(vl64.Encode(v))
	return w
}

// AppendNumber writes v as decimal text.
func (w *Writer) AppendNumber(v int) *Writer {
	w.buf.WriteString(strconv.Itoa(v))
	return w
}

// AppendBool writes v as a VL64 one or zero.
func (w *Writer) AppendBool(v bool) *Writer {
	if v {
		w.buf.WriteByte(TrueVL64)
	} else {
		w.buf.WriteByte(False)
	}
	return w
}

// AppendHeight writes h formatted with FormatHeight.
func (w *Writer) AppendHeight(h float64) *Writer {
	w.buf.WriteString(FormatHeight(h))
	return w
}

// AppendField writes s followed by the field separator.
func (w *Writer) AppendField(s string) *Writer {
	w.buf.WriteString(s)
	w.buf.WriteByte(FieldSeparator)
	return w
}

// AppendLengthPrefixed writes a two character B64 length header followed by s.
func (w *Writer) AppendLengthPrefixed(s string) *Writer {
	w.buf.WriteString(vl64.EncodeB64(len(s), vl64.HeaderLength))
	w.buf.WriteString(s)
	return w
}

// Field writes the field separator.
func (w *Writer) Field() *Writer { return w.AppendByte(FieldSeparator) }

// Record writes the record separator.
func (w *Writer) Record() *Writer { return w.AppendByte(RecordSeparator) }

// Tab writes the tab separator.
func (w *Writer) Tab() *Writer { return w.AppendByte(TabSeparator) }

// ItemSep writes the item separator.
func (w *Writer) ItemSep() *Writer { return w.AppendByte(ItemSeparator) }

// AppendCoordinates writes "x,y,h".
func (w *Writer) AppendCoordinates(x, y int, h float64) *Writer {
	w.buf.WriteString(strconv.Itoa(x))
	w.buf.WriteByte(',')
	w.buf.WriteString(strconv.Itoa(y))
	w.buf.WriteByte(',')
	w.buf.WriteString(FormatHeight(h))
	return w
}

// StartItem opens an item record: the decimal id and the sprite, each
// terminated by the field separator.
func (w *Writer) StartItem(id int, sprite string) *Writer {
	w.buf.WriteString(strconv.Itoa(id))
	w.buf.WriteByte(FieldSeparator)
	w.buf.WriteString(sprite)
	w.buf.WriteByte(FieldSeparator)
	return w
}

// AppendIf writes s only when cond holds.
func (w *Writer) AppendIf(cond bool, s string) *Writer {
	if cond {
		w.buf.WriteString(s)
	}
	return w
}

// Len returns the number of bytes written so far, header included.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Build returns the assembled packet.
func (w *Writer) Build() string {
	return w.buf.String()
}
