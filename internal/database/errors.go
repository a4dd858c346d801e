package database

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes adapter errors.
type ErrorCode string

const (
	// ErrCodeIDInUse indicates AddItem hit an existing id.
	ErrCodeIDInUse ErrorCode = "ID_IN_USE"

	// ErrCodeNotFound indicates UpdateItem or RemoveItem missed.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeNotConnected indicates a call before Connect.
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"

	// ErrCodeUnknownAdapter indicates Init got an unknown backend name.
	ErrCodeUnknownAdapter ErrorCode = "UNKNOWN_ADAPTER"

	// ErrCodeUnsupportedFeature indicates EnableFeature for a feature the
	// backend lacks.
	ErrCodeUnsupportedFeature ErrorCode = "UNSUPPORTED_FEATURE"

	// ErrCodeInvalidArgument indicates a malformed argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error is returned by adapters for expected failure conditions.
type Error struct {
	Code       ErrorCode
	Message    string
	Collection string
	ID         string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (collection=%s, id=%s)", e.Code, e.Message, e.Collection, e.ID)
	}
	if e.Collection != "" {
		return fmt.Sprintf("%s: %s (collection=%s)", e.Code, e.Message, e.Collection)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err (or a wrapped error) is an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err is an ErrCodeNotFound error.
func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

// IsIDInUse reports whether err is an ErrCodeIDInUse error.
func IsIDInUse(err error) bool {
	return HasCode(err, ErrCodeIDInUse)
}

func invalidArgument(collection, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...), Collection: collection}
}
