package engine

import (
	"errors"
	"fmt"
)

// EngineError represents a calculator condition with a stable code.
//
// Arithmetic errors (division by zero, non-finite results) are never
// returned by Engine methods; they are carried in State.Err while the error
// marker is on display. Input errors (unknown key, malformed history entry)
// are returned to the caller.
type EngineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Input is the offending key or expression, if any.
	Input string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeDivisionByZero indicates a divide with a zero divisor.
	ErrCodeDivisionByZero ErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeNonFinite indicates a result that overflowed or is NaN.
	ErrCodeNonFinite ErrorCode = "NON_FINITE"

	// ErrCodeUnknownKey indicates a key token Press cannot dispatch.
	ErrCodeUnknownKey ErrorCode = "UNKNOWN_KEY"

	// ErrCodeMalformedEntry indicates a history entry with no parsable result.
	ErrCodeMalformedEntry ErrorCode = "MALFORMED_ENTRY"
)

// Sentinel errors; compare with errors.Is, which matches on Code.
var (
	ErrDivisionByZero = &EngineError{Code: ErrCodeDivisionByZero, Message: "division by zero"}
	ErrNonFinite      = &EngineError{Code: ErrCodeNonFinite, Message: "result is not a finite number"}
	ErrUnknownKey     = &EngineError{Code: ErrCodeUnknownKey, Message: "unknown key"}
	ErrMalformedEntry = &EngineError{Code: ErrCodeMalformedEntry, Message: "history entry has no result"}
)

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s: %s (%q)", e.Code, e.Message, e.Input)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *EngineError with the same code.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	return ok && t.Code == e.Code
}

// NewUnknownKeyError creates an ErrCodeUnknownKey error for key.
func NewUnknownKeyError(key string) *EngineError {
	return &EngineError{Code: ErrCodeUnknownKey, Message: "unknown key", Input: key}
}

// NewMalformedEntryError creates an ErrCodeMalformedEntry error for expression.
func NewMalformedEntryError(expression string) *EngineError {
	return &EngineError{Code: ErrCodeMalformedEntry, Message: "history entry has no result", Input: expression}
}

// IsArithmeticError returns true for division by zero and non-finite results.
// Uses errors.As to handle wrapped errors.
func IsArithmeticError(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == ErrCodeDivisionByZero || ee.Code == ErrCodeNonFinite
	}
	return false
}
