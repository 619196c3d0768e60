package cli

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calc/internal/store"
)

func countEntries(t *testing.T, path string) int {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()
	n, err := st.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestEvalCommand_Text(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, NewEvalCommand(opts), "12+3=")
	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
	assert.Equal(t, 1, countEntries(t, opts.Database))
}

func TestEvalCommand_ArgsAreJoined(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, NewEvalCommand(opts), "2", "x", "3", "=")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestEvalCommand_JSON(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, NewEvalCommand(opts), "7 ÷ 2 =")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "3.5", resp.Data.Display)
	assert.Equal(t, "7 ÷ 2 = 3.5", resp.Data.Expression)
	assert.Equal(t, "AC", resp.Data.Clear)
	assert.False(t, resp.Data.Error)
}

func TestEvalCommand_PendingOperation(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, NewEvalCommand(opts), "--no-history", "5 +")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestEvalCommand_DivisionByZero(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, NewEvalCommand(opts), "1/0=")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Error\n", out)
	assert.Equal(t, 0, countEntries(t, opts.Database))
}

func TestEvalCommand_UnknownKey(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, NewEvalCommand(opts), "2 q")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownKey, resp.Error.Code)
}

func TestEvalCommand_NoHistory(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, NewEvalCommand(opts), "--no-history", "1+1=")
	require.NoError(t, err)

	_, statErr := os.Stat(opts.Database)
	assert.True(t, os.IsNotExist(statErr), "database should not be created")
}

func TestEvalCommand_Memory(t *testing.T) {
	opts := newTestOptions(t, "text")
	opts.Memory = true

	out, err := execute(t, NewEvalCommand(opts), "1+1=")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, statErr := os.Stat(opts.Database)
	assert.True(t, os.IsNotExist(statErr), "database should not be created")
}

func TestEvalCommand_MissingArgs(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, NewEvalCommand(opts))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
