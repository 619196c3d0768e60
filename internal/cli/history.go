package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
)

// HistoryOptions holds flags for the history subcommands.
type HistoryOptions struct {
	*RootOptions
	Limit int  // list: show at most this many entries (0 = all)
	Yes   bool // clear: confirm deleting everything
}

// HistoryList is the JSON payload of "history list".
type HistoryList struct {
	Entries []history.Entry `json:"entries"`
	Total   int             `json:"total"`
}

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse, reuse and delete past calculations",
		Long: `Browse, reuse and delete the recorded calculations.

Entries are listed newest first. Each entry has an id, the expression
("A op B = R") and the time it was computed.

Examples:
  calc history list
  calc history list --limit 5 --format json
  calc history show <id>
  calc history reuse <id> + 1 =
  calc history delete <id>
  calc history clear --yes`,
	}

	cmd.AddCommand(newHistoryListCommand(opts))
	cmd.AddCommand(newHistoryShowCommand(opts))
	cmd.AddCommand(newHistoryDeleteCommand(opts))
	cmd.AddCommand(newHistoryClearCommand(opts))
	cmd.AddCommand(newHistoryReuseCommand(opts))

	return cmd
}

func newHistoryListCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List calculations, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(opts, cmd, func(ctx context.Context, st history.Store, f *OutputFormatter) error {
				return runHistoryList(ctx, opts, st, f)
			})
		},
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "show at most n entries (0 = all)")
	return cmd
}

func newHistoryShowCommand(opts *HistoryOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one calculation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(opts, cmd, func(ctx context.Context, st history.Store, f *OutputFormatter) error {
				entry, err := st.Get(ctx, args[0])
				if err != nil {
					return f.fail(ExitCommandError, fmt.Sprintf("entry %s", args[0]), err)
				}
				if f.Format == "json" {
					return f.Success(entry)
				}
				return printEntryDetail(f.Writer, entry, opts.timeLayout())
			})
		},
	}
}

func newHistoryDeleteCommand(opts *HistoryOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>...",
		Short:         "Delete calculations by id",
		Long:          "Delete calculations by id. Ids that do not exist are ignored.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(opts, cmd, func(ctx context.Context, st history.Store, f *OutputFormatter) error {
				for _, id := range args {
					if err := st.Delete(ctx, id); err != nil {
						return f.fail(ExitCommandError, "delete failed", err)
					}
					opts.Logger().Debug("deleted history entry", "id", id)
				}
				if f.Format == "json" {
					return f.Success(map[string]interface{}{"deleted": args})
				}
				for _, id := range args {
					fmt.Fprintf(f.Writer, "Deleted %s\n", id)
				}
				return nil
			})
		},
	}
}

func newHistoryClearCommand(opts *HistoryOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every calculation",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "refusing to clear history without --yes")
			}
			return withHistory(opts, cmd, func(ctx context.Context, st history.Store, f *OutputFormatter) error {
				n, err := st.Count(ctx)
				if err != nil {
					return f.fail(ExitCommandError, "count failed", err)
				}
				if err := st.DeleteAll(ctx); err != nil {
					return f.fail(ExitCommandError, "clear failed", err)
				}
				opts.Logger().Info("history cleared", "entries", n)
				if f.Format == "json" {
					return f.Success(map[string]int{"deleted": n})
				}
				fmt.Fprintf(f.Writer, "Deleted %d entr%s\n", n, plural(n, "y", "ies"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deleting every entry")
	return cmd
}

func newHistoryReuseCommand(opts *HistoryOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reuse <id> [keys...]",
		Short: "Continue calculating from a past result",
		Long: `Put the result of a past calculation on a fresh calculator as the
current operand, then press the optional keys.

Example:
  calc history reuse <id> x 2 =`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(opts, cmd, func(ctx context.Context, st history.Store, f *OutputFormatter) error {
				return runHistoryReuse(ctx, opts, st, f, args[0], args[1:])
			})
		},
	}
}

// withHistory opens the history store for the duration of fn.
func withHistory(opts *HistoryOptions, cmd *cobra.Command, fn func(context.Context, history.Store, *OutputFormatter) error) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, closeStore, err := opts.OpenHistory()
	if err != nil {
		return formatter.fail(ExitCommandError, "failed to open history", history.NewStorageError("open", err))
	}
	defer closeStore()

	return fn(ctx, st, formatter)
}

func runHistoryList(ctx context.Context, opts *HistoryOptions, st history.Store, f *OutputFormatter) error {
	entries, err := st.List(ctx)
	if err != nil {
		return f.fail(ExitCommandError, "list failed", err)
	}
	total := len(entries)
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	if f.Format == "json" {
		return f.Success(HistoryList{Entries: entries, Total: total})
	}

	if len(entries) == 0 {
		fmt.Fprintln(f.Writer, "No history.")
		return nil
	}
	return printEntries(f.Writer, entries, opts.timeLayout())
}

func runHistoryReuse(ctx context.Context, opts *HistoryOptions, st history.Store, f *OutputFormatter, id string, keys []string) error {
	entry, err := st.Get(ctx, id)
	if err != nil {
		return f.fail(ExitCommandError, fmt.Sprintf("entry %s", id), err)
	}

	eng, err := opts.NewEngine(st)
	if err != nil {
		return configError(err)
	}
	if err := eng.Recall(entry); err != nil {
		return f.fail(ExitCommandError, "cannot reuse entry", err)
	}
	return reportState(f, eng.State(), eng.PressAll(ctx, engine.SplitKeys(strings.Join(keys, " "))), "reuse")
}

// timeLayout returns the configured timestamp layout.
func (o *HistoryOptions) timeLayout() string {
	cfg, err := o.Config()
	if err != nil || cfg.TimeLayout == "" {
		return time.DateTime
	}
	return cfg.TimeLayout
}

// printEntries writes one aligned line per entry: id, local time, expression.
func printEntries(w io.Writer, entries []history.Entry, layout string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Timestamp.Local().Format(layout), e.Expression)
	}
	return tw.Flush()
}

func printEntryDetail(w io.Writer, e history.Entry, layout string) error {
	result := e.Result()
	if result == "" {
		result = "-"
	}
	_, err := fmt.Fprintf(w, "ID:         %s\nExpression: %s\nResult:     %s\nTime:       %s\n",
		e.ID, e.Expression, result, e.Timestamp.Local().Format(layout))
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// isNotFound reports whether err means the entry does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, history.ErrNotFound)
}
