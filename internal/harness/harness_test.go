package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Basic(t *testing.T) {
	result, err := Run(mustParse(t, basicScenario))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 4)
	assert.Equal(t, "2", result.Final.Display)
	require.Len(t, result.History, 1)
	assert.Equal(t, "entry-1", result.History[0].ID)
	assert.Equal(t, "1 + 1 = 2", result.History[0].Expression)
	assert.Equal(t, "1 + 1 = 2", result.Trace[3].Recorded)
}

func TestRun_IsolatedAndDeterministic(t *testing.T) {
	s := mustParse(t, basicScenario)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, Snapshot(s.Name, first), Snapshot(s.Name, second))
	assert.Len(t, second.History, 1)
}

func TestRun_ExpectMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: "wrong expectations"
flow:
  - keys: "1 + 1 ="
    expect:
      display: "3"
      operation: add
      clear: C
      error: true
assertions:
  - type: display
    value: "2"
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], `display = "2", want "3"`)
	assert.Contains(t, result.Errors[1], "operation = none, want add")
	assert.Contains(t, result.Errors[2], "clear = AC, want C")
	assert.Contains(t, result.Errors[3], "error = false, want true")
}

func TestRun_UnknownKeyIsReported(t *testing.T) {
	s := mustParse(t, `
name: unknown_key
description: "q is not a key"
flow:
  - keys: "1 q"
assertions:
  - type: display
    value: "1"
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Trace, 2)
	assert.NotEmpty(t, result.Trace[1].Failure)
	assert.Contains(t, result.Errors[0], `key "q"`)
}

func TestRun_SetupFailure(t *testing.T) {
	s := mustParse(t, `
name: bad_setup
description: "setup with an unknown key"
setup:
  - "1 q"
flow:
  - keys: "1"
assertions:
  - type: display
    value: "1"
`)
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0]")
}

func TestRun_SetupIsNotTraced(t *testing.T) {
	s := mustParse(t, `
name: setup
description: "setup records but is not traced"
setup:
  - "4 x 2 ="
flow:
  - keys: "+ 1 ="
assertions:
  - type: history_order
    expressions: ["8 + 1 = 9", "4 × 2 = 8"]
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 3)
	assert.Equal(t, "entry-2", result.History[0].ID)
}

func TestRun_ErrorMarker(t *testing.T) {
	s := mustParse(t, `
name: marker
description: "custom error marker"
error_marker: "Not a number"
flow:
  - keys: "1 / 0 ="
    expect:
      display: "Not a number"
      error: true
assertions:
  - type: history_count
    count: 0
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.True(t, result.Trace[3].Error)
}

func TestRun_FullwidthKeys(t *testing.T) {
	s := mustParse(t, `
name: fullwidth
description: "IME input"
flow:
  - keys: "１２＋３＝"
assertions:
  - type: history_contains
    expression: "12 + 3 = 15"
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
