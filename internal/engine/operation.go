package engine

import (
	"fmt"
	"math"
)

// Operation is a binary arithmetic operation awaiting evaluation.
type Operation int

const (
	OpNone Operation = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// Symbol returns the operator as written in history expressions.
func (op Operation) Symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return ""
	}
}

func (op Operation) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// MarshalText encodes the operation by name for JSON output.
func (op Operation) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// Apply computes a op b.
// Returns ErrDivisionByZero for b == 0 under OpDivide and ErrNonFinite when
// the result overflows to an infinity or is NaN.
func (op Operation) Apply(a, b float64) (float64, error) {
	var r float64
	switch op {
	case OpAdd:
		r = a + b
	case OpSubtract:
		r = a - b
	case OpMultiply:
		r = a * b
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		r = a / b
	default:
		return 0, fmt.Errorf("apply: no operation pending")
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, ErrNonFinite
	}
	return r, nil
}

// ClearMode selects what the clear key resets.
type ClearMode int

const (
	// AllClear resets display, both operands and the pending operation.
	AllClear ClearMode = iota
	// ClearEntry resets only the operand being entered.
	ClearEntry
)

// Label is the text shown on the clear key.
func (m ClearMode) Label() string {
	if m == ClearEntry {
		return "C"
	}
	return "AC"
}

func (m ClearMode) String() string {
	if m == ClearEntry {
		return "clear_entry"
	}
	return "all_clear"
}

// MarshalText encodes the mode by name for JSON output.
func (m ClearMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
