// Package config loads calculator settings from a CUE file.
//
// The embedded schema defines a closed #Config with defaults; a user file
// is unified with it, so unknown fields and wrongly typed values are
// rejected with CUE's positioned error messages.
//
// Example config.cue:
//
//	database:     "/home/me/.local/share/calc/history.db"
//	error_marker: "エラー"
//	time_layout:  "2006-01-02 15:04:05"
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Config holds calculator settings.
type Config struct {
	Database    string `json:"database"`
	Memory      bool   `json:"memory"`
	ErrorMarker string `json:"error_marker"`
	TimeLayout  string `json:"time_layout"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	cfg, err := Parse(nil, "")
	if err != nil {
		// The embedded schema is validated by tests.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return cfg
}

// Load reads and validates the config file at path.
// A missing file at the default location is not an error; callers pass
// mustExist=true when the path came from a flag.
func Load(path string, mustExist bool) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !mustExist {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates src against the schema and applies defaults.
// A nil src yields the defaults.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	if src == nil {
		src = []byte("{}")
	}
	if filename == "" {
		filename = "config.cue"
	}
	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}

	value := def.Unify(user)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// DefaultDir returns the per-user directory holding config.cue and the
// history database: $XDG_CONFIG_HOME/calc or the OS equivalent.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "calc"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.cue"), nil
}

// DatabasePath resolves the history database location, creating the
// default directory when no explicit path is configured.
func (c Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}
