package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "calc", cmd.Use)
	assert.Contains(t, cmd.Long, "history")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"eval"}, {"repl"}, {"test"},
		{"history", "list"}, {"history", "show"}, {"history", "delete"},
		{"history", "clear"}, {"history", "reuse"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"db", "config", "memory"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag --%s", name)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	newTestOptions(t, "text") // isolate config dir

	_, err := execute(t, NewRootCommand(), "--format", "xml", "--memory", "eval", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_ConfigFile(t *testing.T) {
	opts := newTestOptions(t, "text")
	path := filepath.Join(t.TempDir(), "config.cue")
	require.NoError(t, os.WriteFile(path, []byte(`error_marker: "NaN"`+"\n"), 0644))

	out, err := execute(t, NewRootCommand(), "--config", path, "--db", opts.Database, "eval", "1/0=")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "NaN\n", out)
}

func TestRootCommand_DefaultConfigLocation(t *testing.T) {
	opts := newTestOptions(t, "text")
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "calc")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.cue"), []byte("memory: true\n"), 0644))

	out, err := execute(t, NewRootCommand(), "--db", opts.Database, "eval", "2+2=")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, statErr := os.Stat(opts.Database)
	assert.True(t, os.IsNotExist(statErr), "memory: true in config should skip the database")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	newTestOptions(t, "text")
	path := filepath.Join(t.TempDir(), "config.cue")
	require.NoError(t, os.WriteFile(path, []byte("colour: \"red\"\n"), 0644))

	_, err := execute(t, NewRootCommand(), "--config", path, "--memory", "eval", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, err.Error(), ErrCodeConfig)
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	newTestOptions(t, "text")

	_, err := execute(t, NewRootCommand(), "--config", filepath.Join(t.TempDir(), "nope.cue"), "eval", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptions_ConfigFlagOverrides(t *testing.T) {
	opts := newTestOptions(t, "text")
	opts.Memory = true

	cfg, err := opts.Config()
	require.NoError(t, err)
	assert.Equal(t, opts.Database, cfg.Database)
	assert.True(t, cfg.Memory)
	assert.Equal(t, "Error", cfg.ErrorMarker)
}
