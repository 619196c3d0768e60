package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/roach88/calc/internal/history"
)

// DefaultErrorMarker is shown on the display in the error state.
const DefaultErrorMarker = "Error"

// State is the observable calculator state.
type State struct {
	// Display is the operand being entered, the last result, or the error marker.
	Display string `json:"display"`

	// Current is the numeric value of the operand being entered.
	Current float64 `json:"current"`

	// Pending is the left operand captured by SetOperation.
	Pending float64 `json:"pending"`

	// Operation is the operation awaiting Evaluate.
	Operation Operation `json:"operation"`

	// AwaitingInput makes the next digit start a new number.
	AwaitingInput bool `json:"awaiting_input"`

	// ClearMode decides what Clear resets.
	ClearMode ClearMode `json:"clear_mode"`

	// Expression is the last expression recorded by Evaluate.
	Expression string `json:"expression,omitempty"`

	// Err is non-nil only in the error state.
	Err error `json:"-"`
}

// InError reports whether the error marker is on display.
func (s State) InError() bool {
	return s.Err != nil
}

func initialState() State {
	return State{Display: "0", Operation: OpNone, ClearMode: AllClear}
}

// Engine is the calculator state machine.
type Engine struct {
	mu        sync.Mutex
	state     State
	recorder  history.Recorder
	clock     Clock
	marker    string
	logger    *slog.Logger
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(State)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to timestamp history entries.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithErrorMarker sets the display text used in the error state.
func WithErrorMarker(marker string) Option {
	return func(e *Engine) {
		if marker != "" {
			e.marker = marker
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine in the cleared state.
// A nil recorder disables history recording.
func New(rec history.Recorder, opts ...Option) *Engine {
	e := &Engine{
		state:    initialState(),
		recorder: rec,
		clock:    SystemClock{},
		marker:   DefaultErrorMarker,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ErrorMarker returns the display text used in the error state.
func (e *Engine) ErrorMarker() string {
	return e.marker
}

// Subscribe registers fn to receive the state after every mutating call.
// The returned function unregisters it; calling it more than once is safe.
func (e *Engine) Subscribe(fn func(State)) (cancel func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextObs++
	id := e.nextObs
	e.observers = append(e.observers, observer{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, o := range e.observers {
			if o.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

// mutate runs fn under the lock and then publishes the resulting state.
// fn is skipped while the engine is in the error state.
func (e *Engine) mutate(fn func(s *State)) {
	e.mu.Lock()
	if e.state.Err == nil {
		fn(&e.state)
	}
	e.publishAndUnlock()
}

// publishAndUnlock releases e.mu and notifies observers in subscription order.
func (e *Engine) publishAndUnlock() {
	snap := e.state
	obs := make([]observer, len(e.observers))
	copy(obs, e.observers)
	e.mu.Unlock()

	for _, o := range obs {
		o.fn(snap)
	}
}

// AppendDigit enters one decimal digit ("0"-"9"). Other input is ignored.
func (e *Engine) AppendDigit(d string) {
	if len(d) != 1 || d[0] < '0' || d[0] > '9' {
		e.logger.Debug("ignoring non-digit input", "input", d)
		e.mutate(func(*State) {})
		return
	}
	e.mutate(func(s *State) {
		if s.Display == "0" || s.AwaitingInput {
			s.Display = d
			s.AwaitingInput = false
		} else {
			s.Display += d
		}
		s.Current = ParseDisplay(s.Display)
		s.ClearMode = ClearEntry
	})
}

// AppendDecimal adds a decimal point unless one is already present.
// AwaitingInput is left as it is.
func (e *Engine) AppendDecimal() {
	e.mutate(func(s *State) {
		if !strings.Contains(s.Display, ".") {
			s.Display += "."
		}
	})
}

// SetOperation makes op pending with the current operand as its left side.
// A previously pending operation is replaced, not evaluated.
func (e *Engine) SetOperation(op Operation) {
	if op == OpNone {
		e.mutate(func(*State) {})
		return
	}
	e.mutate(func(s *State) {
		s.Operation = op
		s.Pending = s.Current
		s.AwaitingInput = true
	})
}

// Percent divides the current operand by 100.
func (e *Engine) Percent() {
	e.mutate(func(s *State) {
		s.Current = s.Current / 100
		s.Display = FormatNumber(s.Current)
	})
}

// Clear resets the calculator. In ClearEntry mode only the current operand
// is reset; in AllClear mode, and always from the error state, everything is.
func (e *Engine) Clear() {
	e.mu.Lock()
	s := &e.state
	if s.ClearMode == AllClear || s.Err != nil {
		*s = initialState()
	} else {
		s.Display = "0"
		s.Current = 0
		s.ClearMode = AllClear
		s.AwaitingInput = false
	}
	e.publishAndUnlock()
}

// Evaluate applies the pending operation and records the expression.
//
// Without a pending operation it does nothing. Division by zero or a
// non-finite result puts the engine in the error state; that is not
// returned as an error and nothing is recorded.
//
// The result is on display before the history append is attempted; an
// append failure is returned as a *history.StorageError and does not undo
// the calculation.
func (e *Engine) Evaluate(ctx context.Context) error {
	e.mu.Lock()
	s := &e.state
	if s.Err != nil || s.Operation == OpNone {
		e.publishAndUnlock()
		return nil
	}

	result, err := s.Operation.Apply(s.Pending, s.Current)
	if err != nil {
		e.logger.Debug("evaluation failed", "pending", s.Pending, "operation", s.Operation, "current", s.Current, "error", err)
		s.Err = err
		s.Display = e.marker
		e.publishAndUnlock()
		return nil
	}

	expr := FormatExpression(s.Pending, s.Operation, s.Current, result)
	s.Current = result
	s.Display = FormatNumber(result)
	s.Operation = OpNone
	s.Pending = 0
	s.AwaitingInput = false
	s.ClearMode = AllClear
	s.Expression = expr

	var appendErr error
	if e.recorder != nil {
		var id string
		id, appendErr = e.recorder.Append(ctx, expr, e.clock.Now())
		if appendErr == nil {
			e.logger.Debug("recorded calculation", "id", id, "expression", expr)
		}
	}
	e.publishAndUnlock()

	if appendErr != nil {
		e.logger.Error("failed to record calculation", "expression", expr, "error", appendErr)
		if !history.IsStorageError(appendErr) {
			appendErr = history.NewStorageError("append", appendErr)
		}
		return appendErr
	}
	return nil
}

// Recall puts the result of a history entry back on display as the current
// operand. The next digit starts a new number. Ignored in the error state.
func (e *Engine) Recall(entry history.Entry) error {
	text := entry.Result()
	if text == "" {
		return NewMalformedEntryError(entry.Expression)
	}
	v, ok := parseFinite(text)
	if !ok {
		return NewMalformedEntryError(entry.Expression)
	}
	e.mutate(func(s *State) {
		s.Current = v
		s.Display = FormatNumber(v)
		s.AwaitingInput = true
	})
	return nil
}
