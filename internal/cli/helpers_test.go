package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/calc/internal/testutil"
)

// newTestOptions returns options backed by a temp SQLite database, a
// deterministic clock and sequential ids, with the user config dir moved
// into the temp dir.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	return &RootOptions{
		Format:   format,
		Database: filepath.Join(dir, "history.db"),
		Clock:    testutil.NewDeterministicClock(),
		IDs:      testutil.NewSequentialIDGenerator(""),
	}
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
