package points

import (
	"errors"
	"fmt"
)

// ContractErrorCode categorizes caller contract violations.
type ContractErrorCode string

const (
	// ErrCodeTooManyGenerations indicates a coordinate was appended more than
	// MaxGenerations times.
	ErrCodeTooManyGenerations ContractErrorCode = "TOO_MANY_GENERATIONS"
)

// ContractError reports a violated precondition. Registry operations panic
// with a *ContractError instead of returning it, since a violation is a bug in
// the caller and not part of normal control flow.
type ContractError struct {
	Code    ContractErrorCode
	Message string
	Point   Point
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s (x=%d, y=%d)", e.Code, e.Message, e.Point.X, e.Point.Y)
}

// IsTooManyGenerations reports whether err (or a wrapped error) is a
// generation overflow.
func IsTooManyGenerations(err error) bool {
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeTooManyGenerations
	}
	return false
}
