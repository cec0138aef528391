package errors

// Metadata keys that tag an error's place in the room engine taxonomy
const (
	metaRejected  = "rejected"
	metaInvariant = "invariant"
)

// Rejectedf reports a business rule refusing a mutation: placement blocked by
// geometry, a toggle on a denylisted item, a move without rights. The room is
// left untouched and the acting client may be told with a rejection packet.
func Rejectedf(format string, args ...interface{}) *Error {
	return Newf(CodeFailedPrecondition, format, args...).WithMeta(metaRejected, true)
}

// IsRejected reports whether err is a business rejection
func IsRejected(err error) bool {
	return hasFlag(err, metaRejected)
}

// Invariantf reports a broken engine invariant such as double occupancy or a
// stack overflowing its capacity. The mutation is refused and logged; the
// room keeps serving everyone else.
func Invariantf(format string, args ...interface{}) *Error {
	return Newf(CodeInternal, format, args...).WithMeta(metaInvariant, true)
}

// IsInvariant reports whether err is an invariant violation
func IsInvariant(err error) bool {
	return hasFlag(err, metaInvariant)
}

func hasFlag(err error, key string) bool {
	v, ok := GetMeta(err)[key].(bool)
	return ok && v
}
