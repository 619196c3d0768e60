package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
)

// TraceEvent is the state observed after one key press.
type TraceEvent struct {
	Step      int    `json:"step"`
	Key       string `json:"key"`
	Display   string `json:"display"`
	Operation string `json:"operation"`
	Clear     string `json:"clear"`
	Error     bool   `json:"error,omitempty"`

	// Recorded is the expression appended to history by this key, if any.
	Recorded string `json:"recorded,omitempty"`

	// Failure is the error Press returned, if any.
	Failure string `json:"failure,omitempty"`
}

// String renders the event as one golden-file line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "step=%d key=%s display=%s op=%s clear=%s",
		e.Step, e.Key, e.Display, e.Operation, e.Clear)
	if e.Error {
		b.WriteString(" error")
	}
	if e.Recorded != "" {
		fmt.Fprintf(&b, " recorded=%q", e.Recorded)
	}
	if e.Failure != "" {
		fmt.Fprintf(&b, " failure=%q", e.Failure)
	}
	return b.String()
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held and no key
	// press failed.
	Pass bool `json:"pass"`

	// Trace holds one event per flow key, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine state after the last key.
	Final engine.State `json:"final"`

	// History is the store contents after the run, newest first.
	History []history.Entry `json:"history"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		History: []history.Entry{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func newTraceEvent(step int, key string, s engine.State) TraceEvent {
	return TraceEvent{
		Step:      step,
		Key:       key,
		Display:   s.Display,
		Operation: s.Operation.String(),
		Clear:     s.ClearMode.Label(),
		Error:     s.InError(),
	}
}
