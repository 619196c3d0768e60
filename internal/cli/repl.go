package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/nyaosorg/go-readline-ny"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/roach88/calc/internal/engine"
	"github.com/roach88/calc/internal/history"
)

const (
	colorError = "\x1B[31;49;1m"
	colorReset = "\x1B[0m"
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions

	// Input overrides stdin (for testing). It is always read line by line.
	Input io.Reader
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive calculator session",
		Long: `Start an interactive calculator session.

Each line is a sequence of keys, e.g. "12+3=" or "x 2 =". The display is
printed after every line. Lines starting with ":" are session commands:

  :history [n]   list the last n calculations (default 10)
  :recall <id>   put a past result on display
  :delete <id>   delete a calculation
  :help          show this help
  :quit          leave the session (Ctrl-D works too)

On a terminal the line editor keeps the typed lines in its own history;
piped input is read line by line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	return cmd
}

// lineReader yields input lines until io.EOF.
type lineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// scriptReader reads lines from a non-interactive source.
type scriptReader struct {
	br *bufio.Reader
}

func newScriptReader(r io.Reader) *scriptReader {
	return &scriptReader{br: bufio.NewReader(r)}
}

func (r *scriptReader) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := r.br.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// lineHistory is the line editor's history of typed lines.
type lineHistory struct {
	lines []string
}

func (h *lineHistory) Len() int { return len(h.lines) }

func (h *lineHistory) At(n int) string { return h.lines[n] }

func (h *lineHistory) Add(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return
	}
	h.lines = append(h.lines, line)
}

// editorReader reads lines from the terminal with go-readline-ny.
type editorReader struct {
	editor  *readline.Editor
	history *lineHistory
}

func (r *editorReader) ReadLine(ctx context.Context) (string, error) {
	line, err := r.editor.ReadLine(ctx)
	if err == readline.CtrlC {
		fmt.Fprintln(r.editor.Writer, err.Error())
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.history.Add(line)
	}
	return line, nil
}

func newEditor(out io.Writer, hist *lineHistory, color bool) *readline.Editor {
	editor := &readline.Editor{
		PromptWriter: func(w io.Writer) (int, error) {
			return io.WriteString(w, "calc> ")
		},
		Writer:  out,
		History: hist,
	}
	if color {
		editor.ResetColor = colorReset
		editor.DefaultColor = "\x1B[39;49;1m"
		editor.Highlight = []readline.Highlight{
			{Pattern: regexp.MustCompile(`^\s*:\w+`), Sequence: "\x1B[33;49;1m"},
			{Pattern: regexp.MustCompile(`[+\-*/x×÷%=]`), Sequence: "\x1B[36;49;1m"},
			{Pattern: regexp.MustCompile(`[0-9.]+`), Sequence: "\x1B[35;49;1m"},
		}
	}
	return editor
}

// session is one interactive calculator.
type session struct {
	eng    *engine.Engine
	store  history.Store
	out    io.Writer
	errOut io.Writer
	layout string
	color  bool
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger()

	st, closeStore, err := opts.OpenHistory()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer closeStore()

	eng, err := opts.NewEngine(st)
	if err != nil {
		return configError(err)
	}
	cancel := eng.Subscribe(func(s engine.State) {
		logger.Debug("state published",
			"display", s.Display,
			"operation", s.Operation,
			"clear", s.ClearMode.Label(),
			"awaiting_input", s.AwaitingInput,
			"error", s.InError(),
		)
	})
	defer cancel()

	hopts := &HistoryOptions{RootOptions: opts.RootOptions}
	sess := &session{
		eng:    eng,
		store:  st,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		layout: hopts.timeLayout(),
	}

	if opts.Input != nil {
		return sess.loop(ctx, newScriptReader(opts.Input))
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return sess.loop(ctx, newScriptReader(os.Stdin))
	}

	// interactive mode
	disabler := colorable.EnableColorsStdout(nil)
	defer disabler()
	termOut := colorable.NewColorableStdout()

	sess.out = termOut
	sess.errOut = colorable.NewColorableStderr()
	sess.color = os.Getenv("NO_COLOR") == ""

	fmt.Fprintln(termOut, "Type keys such as 12+3= and press Enter. :help lists commands.")
	hist := &lineHistory{}
	return sess.loop(ctx, &editorReader{editor: newEditor(termOut, hist, sess.color), history: hist})
}

// loop reads lines until EOF or :quit. Input errors are reported and the
// session continues.
func (s *session) loop(ctx context.Context, in lineReader) error {
	for {
		line, err := in.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		quit, err := s.handle(ctx, line)
		if err != nil {
			fmt.Fprintf(s.errOut, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// handle runs one input line and reports whether the session should end.
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false, nil
	case strings.HasPrefix(line, ":"):
		return s.meta(ctx, strings.Fields(line))
	}

	err := s.eng.PressAll(ctx, engine.SplitKeys(line))
	s.printState()
	return false, err
}

func (s *session) meta(ctx context.Context, fields []string) (bool, error) {
	switch fields[0] {
	case ":quit", ":q", ":exit":
		return true, nil

	case ":help":
		fmt.Fprintln(s.out, "keys: 0-9 . + - * x / % = c    commands: :history [n] :recall <id> :delete <id> :quit")
		return false, nil

	case ":history":
		n := 10
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 0 {
				return false, fmt.Errorf(":history takes a non-negative count, got %q", fields[1])
			}
			n = v
		}
		entries, err := s.store.List(ctx)
		if err != nil {
			return false, err
		}
		if len(entries) == 0 {
			fmt.Fprintln(s.out, "No history.")
			return false, nil
		}
		if n > 0 && len(entries) > n {
			entries = entries[:n]
		}
		return false, printEntries(s.out, entries, s.layout)

	case ":recall":
		if len(fields) != 2 {
			return false, fmt.Errorf(":recall takes one id")
		}
		entry, err := s.store.Get(ctx, fields[1])
		if isNotFound(err) {
			return false, fmt.Errorf("no calculation with id %s", fields[1])
		}
		if err != nil {
			return false, err
		}
		if err := s.eng.Recall(entry); err != nil {
			return false, err
		}
		s.printState()
		return false, nil

	case ":delete":
		if len(fields) != 2 {
			return false, fmt.Errorf(":delete takes one id")
		}
		if err := s.store.Delete(ctx, fields[1]); err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Deleted %s\n", fields[1])
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try :help)", fields[0])
	}
}

// printState writes the display, followed by the pending operator unless
// the calculator is in the error state.
func (s *session) printState() {
	st := s.eng.State()
	display := st.Display
	if st.InError() && s.color {
		display = colorError + display + colorReset
	}
	if st.Operation != engine.OpNone && !st.InError() {
		fmt.Fprintf(s.out, "%s %s\n", display, st.Operation.Symbol())
		return
	}
	fmt.Fprintln(s.out, display)
}
