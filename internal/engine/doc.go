// Package engine implements the calculator state machine.
//
// The Engine accumulates operand digits, holds one pending operation and
// evaluates it against the current operand. Every successful evaluation is
// appended to a history.Recorder as "A op B = R".
//
// # States
//
//	accumulating-first-operand -> operation-pending -> accumulating-second-operand
//	    -> result-shown
//	any -> error (division by zero, non-finite result)
//
// The error state is left only through Clear, which then always performs an
// all-clear. Every other operation is ignored while the error marker is on
// display.
//
// # Operator overwrite
//
// Selecting an operation while another one is pending replaces it without
// evaluating: "2 + × 3 =" computes 2 × 3. There is no chaining and no
// precedence.
//
// # Publishing
//
// Each mutating call ends with an explicit publish step: subscribers
// registered with Subscribe receive a copy of the State after the engine
// lock is released.
//
// # Thread-safety
//
// All methods are serialised by an internal mutex. The history append made
// by Evaluate runs under that mutex, so a slow store blocks the next key.
package engine
