package errors

import (
	"errors"
)

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the error code from an error. Errors from outside the
// package count as CodeInternal; nil is CodeOK.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e := asError(err); e != nil {
		return e.Code
	}
	return CodeInternal
}

// GetMeta extracts metadata from an error
func GetMeta(err error) map[string]interface{} {
	if e := asError(err); e != nil {
		return e.Meta
	}
	return nil
}

// GetMessage extracts the message a client may see. Rejection packets and
// admin responses carry this rather than the full chain.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// HasCode reports whether err carries code
func HasCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool { return HasCode(err, CodeInvalidArgument) }

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool { return HasCode(err, CodePermissionDenied) }

// IsUnavailable reports errors from stopped rooms and closing sessions
func IsUnavailable(err error) bool { return HasCode(err, CodeUnavailable) }

// IsFailedPrecondition checks if an error is a failed precondition error
func IsFailedPrecondition(err error) bool { return HasCode(err, CodeFailedPrecondition) }

// IsAlreadyExists checks for duplicate keys in storage
func IsAlreadyExists(err error) bool { return HasCode(err, CodeAlreadyExists) }

// IsResourceExhausted reports full stacks and full rooms
func IsResourceExhausted(err error) bool { return HasCode(err, CodeResourceExhausted) }

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
