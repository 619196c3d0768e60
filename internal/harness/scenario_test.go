package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicScenario = `
name: basic
description: "one plus one"
flow:
  - keys: "1 + 1 ="
assertions:
  - type: display
    value: "2"
`

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestParseScenario_Valid(t *testing.T) {
	s := mustParse(t, `
name: full
description: "all fields"
error_marker: "E"
setup:
  - "1 + 1 ="
flow:
  - keys: "2 x 3 ="
    expect:
      display: "6"
      operation: none
      clear: AC
      error: false
assertions:
  - type: display
    value: "6"
  - type: final_state
    expect: { current: 6, operation: none }
  - type: history_contains
    expression: "2 × 3 = 6"
  - type: history_order
    expressions: ["2 × 3 = 6", "1 + 1 = 2"]
  - type: history_count
    count: 2
`)
	assert.Equal(t, "full", s.Name)
	assert.Equal(t, "E", s.ErrorMarker)
	assert.Equal(t, []string{"1 + 1 ="}, s.Setup)
	require.Len(t, s.Flow, 1)
	require.NotNil(t, s.Flow[0].Expect)
	require.NotNil(t, s.Flow[0].Expect.Error)
	assert.False(t, *s.Flow[0].Expect.Error)
	assert.Len(t, s.Assertions, 5)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unknown field",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\nassertion: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			src:  "description: y\nflow: [{keys: \"1\"}]\nassertions: [{type: display, value: \"1\"}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			src:  "name: x\nflow: [{keys: \"1\"}]\nassertions: [{type: display, value: \"1\"}]\n",
			want: "description is required",
		},
		{
			name: "empty flow",
			src:  "name: x\ndescription: y\nflow: []\nassertions: [{type: display, value: \"1\"}]\n",
			want: "flow list is required",
		},
		{
			name: "missing assertions",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\n",
			want: "assertions list is required",
		},
		{
			name: "empty keys",
			src:  "name: x\ndescription: y\nflow: [{keys: \"\"}]\nassertions: [{type: display, value: \"1\"}]\n",
			want: "flow[0]: keys is required",
		},
		{
			name: "bad clear label",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\", expect: {clear: CE}}]\nassertions: [{type: display, value: \"1\"}]\n",
			want: "clear must be AC or C",
		},
		{
			name: "unknown assertion type",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\nassertions: [{type: trace_count}]\n",
			want: "unknown assertion type",
		},
		{
			name: "display without value",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\nassertions: [{type: display}]\n",
			want: "value is required for display",
		},
		{
			name: "final_state unknown field",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\nassertions: [{type: final_state, expect: {colour: red}}]\n",
			want: "unknown final_state field",
		},
		{
			name: "history_order too short",
			src:  "name: x\ndescription: y\nflow: [{keys: \"1\"}]\nassertions: [{type: history_order, expressions: [a]}]\n",
			want: "at least two expressions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(basicScenario), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "basic", s.Name)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
