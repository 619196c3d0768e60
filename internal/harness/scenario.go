package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a key-sequence test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ErrorMarker overrides the display text of the error state.
	ErrorMarker string `yaml:"error_marker,omitempty"`

	// Setup holds key lines pressed before the flow. They are not traced,
	// but anything they record stays in history.
	Setup []string `yaml:"setup,omitempty"`

	// Flow holds the traced key lines.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state and history.
	// Supported types: display, final_state, history_contains,
	// history_order, history_count.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one line of keys, optionally checked after its last key.
type FlowStep struct {
	Keys   string        `yaml:"keys"`
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks the state after a flow step. Empty fields are not
// checked.
type ExpectClause struct {
	Display   string `yaml:"display,omitempty"`
	Operation string `yaml:"operation,omitempty"`
	Clear     string `yaml:"clear,omitempty"`
	Error     *bool  `yaml:"error,omitempty"`
}

// Assertion validates the final state or history.
type Assertion struct {
	// Type selects the assertion; see the Assert* constants.
	Type string `yaml:"type"`

	// Value is the expected display (display).
	Value string `yaml:"value,omitempty"`

	// Expression is an expected history expression (history_contains).
	Expression string `yaml:"expression,omitempty"`

	// Expressions must appear in this order in the history list, newest
	// first, not necessarily adjacent (history_order).
	Expressions []string `yaml:"expressions,omitempty"`

	// Count is the expected number of history entries (history_count).
	Count int `yaml:"count,omitempty"`

	// Expect holds expected state fields (final_state). Subset match on
	// display, current, pending, operation, clear, awaiting_input, error.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertDisplay         = "display"
	AssertFinalState      = "final_state"
	AssertHistoryContains = "history_contains"
	AssertHistoryOrder    = "history_order"
	AssertHistoryCount    = "history_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, line := range s.Setup {
		if line == "" {
			return fmt.Errorf("setup[%d]: keys must be non-empty", i)
		}
	}

	for i, step := range s.Flow {
		if step.Keys == "" {
			return fmt.Errorf("flow[%d]: keys is required", i)
		}
		if step.Expect != nil && step.Expect.Clear != "" &&
			step.Expect.Clear != "AC" && step.Expect.Clear != "C" {
			return fmt.Errorf("flow[%d].expect: clear must be AC or C, got %q", i, step.Expect.Clear)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDisplay:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for display", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
		for field := range a.Expect {
			if !finalStateFields[field] {
				return fmt.Errorf("assertions[%d]: unknown final_state field %q", index, field)
			}
		}
	case AssertHistoryContains:
		if a.Expression == "" {
			return fmt.Errorf("assertions[%d]: expression is required for history_contains", index)
		}
	case AssertHistoryOrder:
		if len(a.Expressions) < 2 {
			return fmt.Errorf("assertions[%d]: history_order needs at least two expressions", index)
		}
	case AssertHistoryCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be >= 0 for history_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
