package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/calc/internal/config"
	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
	"github.com/roach88/calc/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides config database
	ConfigPath string // explicit config file; must exist when set
	Memory     bool   // keep history in memory only

	// Clock overrides the engine clock (for testing).
	// If nil, defaults to engine.SystemClock.
	Clock engine.Clock

	// IDs overrides history entry id generation (for testing).
	// If nil, the store's UUIDv7 generator is used.
	IDs history.IDGenerator

	cfg    *config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the calc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "calc - a calculator with history",
		Long: `A four-function calculator with percent, clear and a persisted
history of computed expressions that can be listed, reused and deleted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			slog.SetDefault(opts.logger)

			if _, err := opts.Config(); err != nil {
				return configError(err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite history database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config.cue")
	cmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "keep history in memory for this run only")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger builds the text logger used by every command: Info by
// default, Debug with --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// Logger returns the command logger, falling back to slog.Default when the
// root pre-run hook did not run.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// Config loads the configuration once and applies flag overrides.
func (o *RootOptions) Config() (config.Config, error) {
	if o.cfg != nil {
		return *o.cfg, nil
	}

	path, mustExist := o.ConfigPath, true
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return config.Config{}, err
		}
		mustExist = false
	}

	cfg, err := config.Load(path, mustExist)
	if err != nil {
		return config.Config{}, err
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Memory {
		cfg.Memory = true
	}

	o.cfg = &cfg
	return cfg, nil
}

// OpenHistory opens the configured history store. The returned close
// function is never nil.
func (o *RootOptions) OpenHistory() (history.Store, func(), error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, func() {}, err
	}

	if cfg.Memory {
		o.Logger().Debug("using in-memory history")
		return history.NewMemoryStore(o.IDs), func() {}, nil
	}

	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, func() {}, err
	}

	var storeOpts []store.Option
	if o.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.IDs))
	}

	o.Logger().Debug("opening history database", "path", path)
	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {
		if closeErr := st.Close(); closeErr != nil {
			o.Logger().Error("error closing database", "error", closeErr)
		}
	}
	return st, closeFn, nil
}

// NewEngine creates an engine recording into rec with the configured error
// marker, clock and logger.
func (o *RootOptions) NewEngine(rec history.Recorder) (*engine.Engine, error) {
	cfg, err := o.Config()
	if err != nil {
		return nil, err
	}

	engOpts := []engine.Option{
		engine.WithErrorMarker(cfg.ErrorMarker),
		engine.WithLogger(o.Logger()),
	}
	if o.Clock != nil {
		engOpts = append(engOpts, engine.WithClock(o.Clock))
	}
	return engine.New(rec, engOpts...), nil
}

// configError reports a config file that could not be loaded.
func configError(err error) error {
	return WrapExitError(ExitCommandError, ErrCodeConfig+": failed to load config", err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
