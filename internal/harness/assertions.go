package harness

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/calc/internal/engine"
)

// finalStateFields are the keys a final_state assertion may check.
var finalStateFields = map[string]bool{
	"display":        true,
	"current":        true,
	"pending":        true,
	"operation":      true,
	"clear":          true,
	"awaiting_input": true,
	"error":          true,
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	History  []string // History expressions, newest first
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.History) > 0 {
		fmt.Fprintf(&buf, "\nHistory:\n")
		for i, expr := range e.History {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, expr)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages. Assertions are independent; all of them run.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertDisplay:
		return assertDisplay(result.Final, a)
	case AssertFinalState:
		return assertFinalState(result.Final, a)
	case AssertHistoryContains:
		return assertHistoryContains(historyExpressions(result.History), a)
	case AssertHistoryOrder:
		return assertHistoryOrder(historyExpressions(result.History), a)
	case AssertHistoryCount:
		return assertHistoryCount(historyExpressions(result.History), a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertDisplay(s engine.State, a Assertion) error {
	if s.Display != a.Value {
		return &AssertionError{
			Type:     AssertDisplay,
			Expected: fmt.Sprintf("display %q", a.Value),
			Actual:   fmt.Sprintf("display %q", s.Display),
		}
	}
	return nil
}

// assertFinalState compares the listed fields using their textual form, so
// YAML 20, 20.0 and "20" all match a current value of 20.
func assertFinalState(s engine.State, a Assertion) error {
	actual := stateFields(s)

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := actual[k]
		if !ok {
			return fmt.Errorf("unknown final_state field %q", k)
		}
		want := expectedText(k, a.Expect[k])
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s=%s (want %s)", k, got, want))
		}
	}

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%v", a.Expect),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

func stateFields(s engine.State) map[string]string {
	return map[string]string{
		"display":        s.Display,
		"current":        engine.FormatNumber(s.Current),
		"pending":        engine.FormatNumber(s.Pending),
		"operation":      s.Operation.String(),
		"clear":          s.ClearMode.Label(),
		"awaiting_input": strconv.FormatBool(s.AwaitingInput),
		"error":          strconv.FormatBool(s.InError()),
	}
}

// expectedText normalises a YAML value to the form used by stateFields.
func expectedText(field string, v interface{}) string {
	switch field {
	case "current", "pending":
		switch n := v.(type) {
		case int:
			return engine.FormatNumber(float64(n))
		case float64:
			return engine.FormatNumber(n)
		case string:
			return engine.FormatNumber(engine.ParseDisplay(n))
		}
	}
	return fmt.Sprint(v)
}

// assertHistoryContains checks that some entry has exactly the expression.
func assertHistoryContains(exprs []string, a Assertion) error {
	for _, e := range exprs {
		if e == a.Expression {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertHistoryContains,
		Expected: fmt.Sprintf("expression %q", a.Expression),
		Actual:   "not found in history",
		History:  exprs,
	}
}

// assertHistoryOrder checks that the expressions appear in the given order
// in the list. Intervening entries are allowed.
func assertHistoryOrder(exprs []string, a Assertion) error {
	pos := 0
	for _, want := range a.Expressions {
		found := false
		for pos < len(exprs) {
			pos++
			if exprs[pos-1] == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertHistoryOrder,
				Expected: fmt.Sprintf("expressions in order: %q", a.Expressions),
				Actual:   fmt.Sprintf("%q missing or out of order", want),
				History:  exprs,
			}
		}
	}
	return nil
}

func assertHistoryCount(exprs []string, a Assertion) error {
	if len(exprs) != a.Count {
		return &AssertionError{
			Type:     AssertHistoryCount,
			Expected: fmt.Sprintf("%d entries", a.Count),
			Actual:   fmt.Sprintf("%d entries", len(exprs)),
			History:  exprs,
		}
	}
	return nil
}
