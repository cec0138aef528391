// Package packet assembles and parses client packets.
//
// A packet is a two character B64 header followed by a body of raw text,
// VL64 integers and single character separators. The Writer never validates
// what it is given; the Reader never fails on what it is given. Callers own
// protocol correctness on the way out, and untrusted input can never panic
// the reader on the way in.
package packet

import (
	"strconv"
	"strings"
)

// Separators used inside packet bodies
const (
	FieldSeparator  byte = 2
	RecordSeparator byte = 13
	TabSeparator    byte = 9
	ItemSeparator   byte = 30

	// Terminator ends a packet on the socket; the transport appends it
	Terminator byte = 1
)

// Boolean sentinels. PopBool accepts either of them as true.
const (
	TrueVL64 byte = 'I'
	TrueB64  byte = 'A'
	False    byte = 'H'
)

// FormatHeight renders a height the way the client expects it: integral
// values keep one decimal place, anything else is printed at its natural
// precision.
func FormatHeight(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
