package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
	"github.com/roach88/calc/internal/store"
	"github.com/roach88/calc/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and entry ids.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *testutil.DeterministicClock
	logger *slog.Logger

	// published collects every state the engine publishes.
	published []engine.State
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database and engine
//  2. Press setup keys (untraced)
//  3. Press flow keys, tracing every key and checking expect clauses
//  4. Evaluate assertions against final state and history
//
// Key press failures and failed checks are reported in the result; an
// error is returned only when the harness itself cannot run.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithIDGenerator(testutil.NewSequentialIDGenerator("")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.engine = engine.New(st,
		engine.WithClock(h.clock),
		engine.WithErrorMarker(scenario.ErrorMarker),
		engine.WithLogger(h.logger),
	)
	cancel := h.engine.Subscribe(func(s engine.State) {
		h.published = append(h.published, s)
	})
	defer cancel()

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.Final = h.engine.State()
	entries, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	result.History = entries

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup presses every setup line. Setup must not fail.
func (h *Harness) executeSetup(ctx context.Context, setup []string) error {
	for i, line := range setup {
		if err := h.engine.PressAll(ctx, engine.SplitKeys(line)); err != nil {
			return fmt.Errorf("setup[%d] %q: %w", i, line, err)
		}
		h.logger.Info("setup line pressed", "index", i, "keys", line)
	}
	return nil
}

// executeFlow presses every flow key, records one trace event per key and
// validates expect clauses after the last key of each step.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		keys := engine.SplitKeys(step.Keys)
		if len(keys) == 0 {
			result.AddError(fmt.Sprintf("flow[%d]: no keys in %q", i, step.Keys))
			continue
		}

		for _, key := range keys {
			before, err := h.store.Count(ctx)
			if err != nil {
				return err
			}
			published := len(h.published)

			pressErr := h.engine.Press(ctx, key)

			if n := len(h.published) - published; n != 1 && pressErr == nil {
				result.AddError(fmt.Sprintf("flow[%d] key %q: published %d states, want 1", i, key, n))
			}

			event := newTraceEvent(i+1, key, h.engine.State())
			if pressErr != nil {
				event.Failure = pressErr.Error()
				result.AddError(fmt.Sprintf("flow[%d] key %q: %v", i, key, pressErr))
			}

			after, err := h.store.Count(ctx)
			if err != nil {
				return err
			}
			if after > before {
				event.Recorded = h.engine.State().Expression
			}

			result.Trace = append(result.Trace, event)
		}

		if step.Expect != nil {
			for _, msg := range checkExpect(h.engine.State(), step.Expect) {
				result.AddError(fmt.Sprintf("flow[%d]: %s", i, msg))
			}
		}
	}
	return nil
}

// checkExpect compares state against the non-empty fields of an expect clause.
func checkExpect(s engine.State, want *ExpectClause) []string {
	var errs []string
	if want.Display != "" && s.Display != want.Display {
		errs = append(errs, fmt.Sprintf("display = %q, want %q", s.Display, want.Display))
	}
	if want.Operation != "" && s.Operation.String() != want.Operation {
		errs = append(errs, fmt.Sprintf("operation = %s, want %s", s.Operation, want.Operation))
	}
	if want.Clear != "" && s.ClearMode.Label() != want.Clear {
		errs = append(errs, fmt.Sprintf("clear = %s, want %s", s.ClearMode.Label(), want.Clear))
	}
	if want.Error != nil && s.InError() != *want.Error {
		errs = append(errs, fmt.Sprintf("error = %t, want %t", s.InError(), *want.Error))
	}
	return errs
}

// historyExpressions returns the expressions of entries in list order.
func historyExpressions(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Expression
	}
	return out
}
