package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Error carries a Code for the admin RPC surface, a Message safe to show
// a client, the underlying Cause and metadata such as room or item ids.
type Error struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so callers can compare against
// sentinels like room.ErrRoomClosed after wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Code == e.Code
}

// WithMeta sets key on the error and returns it for chaining
func (e *Error) WithMeta(key string, value interface{}) *Error {
	if e.Meta == nil {
		e.Meta = map[string]interface{}{}
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap adds context to err. An *Error anywhere in the chain lends its code
// and metadata; anything else is CodeInternal.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	var meta map[string]interface{}
	if inner := asError(err); inner != nil {
		code, meta = inner.Code, inner.Meta
	}
	return &Error{Code: code, Message: message, Cause: err, Meta: meta}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode re-classifies err. Metadata is copied so the new code does
// not leak back into the wrapped error.
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	meta := map[string]interface{}{}
	if inner := asError(err); inner != nil {
		maps.Copy(meta, inner.Meta)
	}
	return &Error{Code: code, Message: message, Cause: err, Meta: meta}
}

// NotFound is returned for rooms that are not loaded, unknown sessions and
// missing records.
func NotFound(message string) *Error { return New(CodeNotFound, message) }

func NotFoundf(format string, args ...interface{}) *Error {
	return Newf(CodeNotFound, format, args...)
}

func InvalidArgument(message string) *Error { return New(CodeInvalidArgument, message) }

func InvalidArgumentf(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

func AlreadyExistsf(format string, args ...interface{}) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

func PermissionDenied(message string) *Error { return New(CodePermissionDenied, message) }

func Internal(message string) *Error { return New(CodeInternal, message) }

// Unavailable marks work refused because a room, session or the whole
// manager is stopping. Retrying against a fresh instance may succeed.
func Unavailable(message string) *Error { return New(CodeUnavailable, message) }

func Unavailablef(format string, args ...interface{}) *Error {
	return Newf(CodeUnavailable, format, args...)
}

func ResourceExhaustedf(format string, args ...interface{}) *Error {
	return Newf(CodeResourceExhausted, format, args...)
}

func FailedPrecondition(message string) *Error { return New(CodeFailedPrecondition, message) }
