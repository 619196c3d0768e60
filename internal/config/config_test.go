package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "", cfg.Database)
	assert.False(t, cfg.Memory)
	assert.Equal(t, "Error", cfg.ErrorMarker)
	assert.Equal(t, "2006/01/02 15:04", cfg.TimeLayout)
}

func TestParse_OverridesDefaults(t *testing.T) {
	src := `
database:     "/tmp/calc.db"
error_marker: "エラー"
`
	cfg, err := Parse([]byte(src), "test.cue")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/calc.db", cfg.Database)
	assert.Equal(t, "エラー", cfg.ErrorMarker)
	assert.Equal(t, "2006/01/02 15:04", cfg.TimeLayout)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte(`databse: "/tmp/x.db"`), "typo.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databse")
}

func TestParse_RejectsWrongType(t *testing.T) {
	_, err := Parse([]byte(`memory: "yes"`), "bad.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestParse_RejectsEmptyMarker(t *testing.T) {
	_, err := Parse([]byte(`error_marker: ""`), "bad.cue")
	require.Error(t, err)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte(`database: `), "broken.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_MissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.cue"), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.cue"), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.cue")
	require.NoError(t, os.WriteFile(path, []byte(`memory: true`), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.True(t, cfg.Memory)
}

func TestDatabasePath_Explicit(t *testing.T) {
	cfg := Config{Database: "/data/h.db"}
	path, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/data/h.db", path)
}

func TestDatabasePath_Default(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path, err := Default().DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "history.db", filepath.Base(path))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
