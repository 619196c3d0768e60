package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	NoHistory bool // do not record evaluations
}

// EvalResult is the outcome of an eval run.
type EvalResult struct {
	Display    string           `json:"display"`
	Expression string           `json:"expression,omitempty"`
	Operation  engine.Operation `json:"operation"`
	Clear      string           `json:"clear"`
	Error      bool             `json:"error"`
}

func newEvalResult(s engine.State) EvalResult {
	return EvalResult{
		Display:    s.Display,
		Expression: s.Expression,
		Operation:  s.Operation,
		Clear:      s.ClearMode.Label(),
		Error:      s.InError(),
	}
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <keys>...",
		Short: "Press keys on a fresh calculator",
		Long: `Press a sequence of keys on a fresh calculator and print the display.

Keys are digits, ".", "+", "-", "*" (or "x", "×"), "/" (or "÷"), "%", "="
and "c" (or "ac", "ce"). Arguments are joined, so "12+3=" and "12 + 3 ="
are equivalent. Every "=" records its expression in history.

Exit codes:
  0 - Display shows a number
  1 - Calculator is in the error state (e.g. division by zero)
  2 - Command error (unknown key, database problem)

Examples:
  calc eval 12+3=
  calc eval 2 x 3 =
  calc eval --no-history 1/0=
  calc eval 50 % --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoHistory, "no-history", false, "do not record evaluations")

	return cmd
}

func runEval(opts *EvalOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var rec history.Recorder
	if !opts.NoHistory {
		st, closeStore, err := opts.OpenHistory()
		if err != nil {
			return formatter.fail(ExitCommandError, "failed to open history", history.NewStorageError("open", err))
		}
		defer closeStore()
		rec = st
	}

	eng, err := opts.NewEngine(rec)
	if err != nil {
		return configError(err)
	}

	keys := engine.SplitKeys(strings.Join(args, " "))
	formatter.VerboseLog("pressing %d key(s): %s", len(keys), strings.Join(keys, " "))

	return reportState(formatter, eng.State(), eng.PressAll(ctx, keys), "eval")
}

// reportState prints the final calculator state and maps the outcome to
// an exit code. A failed history write still shows the result.
func reportState(f *OutputFormatter, st engine.State, pressErr error, action string) error {
	if pressErr != nil && (errors.Is(pressErr, engine.ErrUnknownKey) || !history.IsStorageError(pressErr)) {
		return f.fail(ExitCommandError, action+" failed", pressErr)
	}

	result := newEvalResult(st)
	if pressErr != nil {
		if f.Format == "json" {
			_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
				Status: "error",
				Data:   result,
				Error: &CLIError{
					Code:    ErrCodeStorage,
					Message: fmt.Sprintf("result not saved to history: %v", pressErr),
				},
			})
		} else {
			fmt.Fprintln(f.Writer, result.Display)
		}
		return WrapExitError(ExitCommandError, ErrCodeStorage+": result not saved to history", pressErr)
	}

	if f.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(f.Writer, result.Display)
	}

	if engine.IsArithmeticError(st.Err) {
		return NewExitError(ExitFailure, fmt.Sprintf("calculator error: %v", st.Err))
	}
	return nil
}
