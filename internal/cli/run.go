package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/monopole/procpipe"
	"github.com/monopole/procpipe/internal/console"
	"github.com/monopole/procpipe/internal/profile"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// Flag names.
const (
	flagEncoding   = "encoding"
	flagProfile    = "profile"
	flagName       = "name"
	flagGrace      = "grace"
	flagStrict     = "strict"
	flagMaxLineLen = "max-line-len"
	flagStdin      = "stdin"
	flagSummary    = "summary"
)

type runOptions struct {
	encoding   string
	profile    string
	name       string
	grace      time.Duration
	strict     bool
	maxLineLen int
	stdin      bool
	summary    bool
}

func newRunCommand() *cobra.Command {
	var o runOptions
	cmd := &cobra.Command{
		Use:   "run [flags] [--] command [args...]",
		Short: "Run a command, printing its output line by line",
		Long: `Run a command, printing each line of its stdout as "out: line"
and each line of its stderr as "err: line".

The command comes from the arguments, or from a YAML profile.
Flags given on the command line override the profile.

Once the command's input ends (at once, unless --stdin is given)
it has the grace period to exit before it is killed.  An interrupt
kills it immediately.

Examples:
  # A DOS command speaks code page 850.
  procpipe run --encoding IBM850 -- cmd.exe /c dir

  # Feed the command from this program's stdin.
  printf 'echo hi\nquit\n' | procpipe run --stdin -- procpipe conch

  # Use a profile, but shorten its grace period.
  procpipe run --profile listing.yaml --grace 1s`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := o.resolve(cmd, args)
			if err != nil {
				return err
			}
			return o.run(cmd, p)
		},
	}
	f := cmd.Flags()
	f.SetInterspersed(false)
	f.StringVarP(&o.encoding, flagEncoding, "e", profile.DefaultEncoding,
		"Encoding of the command's stdio, e.g. IBM850, CP1252, UTF-16LE.")
	f.StringVarP(&o.profile, flagProfile, "p", "",
		"YAML profile describing the command.")
	f.StringVar(&o.name, flagName, "",
		"Name used in log lines.")
	f.DurationVarP(&o.grace, flagGrace, "g", 5*time.Second,
		"How long to wait for the command to exit after closing its stdin.")
	f.BoolVar(&o.strict, flagStrict, false,
		"Fail if a stream couldn't be read to its end.")
	f.IntVar(&o.maxLineLen, flagMaxLineLen, 0,
		"Longest acceptable output line; zero means the default.")
	f.BoolVarP(&o.stdin, flagStdin, "i", false,
		"Forward this program's stdin to the command.")
	f.BoolVarP(&o.summary, flagSummary, "s", false,
		"Print a summary table after the command finishes.")
	return cmd
}

// resolve merges the profile, the positional args and the flags.
func (o *runOptions) resolve(
	cmd *cobra.Command, args []string) (*profile.Profile, error) {
	p := &profile.Profile{}
	if o.profile != "" {
		var err error
		if p, err = profile.Load(o.profile); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		p.Command, p.Args = args[0], args[1:]
	}
	flags := cmd.Flags()
	if flags.Changed(flagEncoding) || p.Encoding == "" {
		p.Encoding = o.encoding
	}
	if flags.Changed(flagName) {
		p.Name = o.name
	}
	if flags.Changed(flagGrace) || p.GracePeriod == 0 {
		p.GracePeriod = o.grace
	}
	if flags.Changed(flagStrict) {
		p.Strict = o.strict
	}
	if flags.Changed(flagMaxLineLen) {
		p.MaxLineLen = o.maxLineLen
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bad run options; %w", err)
	}
	return p, nil
}

func (o *runOptions) run(cmd *cobra.Command, p *profile.Profile) error {
	enc, err := p.TextEncoding()
	if err != nil {
		return err
	}
	sink := console.New(cmd.OutOrStdout())
	start := time.Now()
	r, err := procpipe.Run(p.Cmd(), enc, sink.Out, sink.Err, p.Params())
	if err != nil {
		return err
	}
	// Without forwarded input, the command's input ends at once.
	inputDone := make(chan struct{})
	if o.stdin {
		go func() {
			defer close(inputDone)
			forwardInput(cmd.InOrStdin(), r)
		}()
	} else {
		close(inputDone)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-inputDone:
	case <-r.OnExit():
	case <-ctx.Done():
	}
	// Once input is over, the command has the grace period to finish,
	// unless an interrupt arrives first.
	err = r.Shutdown(ctx)
	if errors.Is(err, procpipe.ErrInterrupted) {
		sink.Info("interrupted, stopping pid %d", r.Pid())
		err = r.Stop()
	}
	sink.Out("process finished")

	res := <-r.OnExit()
	if o.summary {
		printSummary(cmd.OutOrStdout(), r, res, time.Since(start))
	}
	if err != nil {
		return err
	}
	if !res.Success() {
		code := res.ExitCode
		if code <= 0 {
			code = 1
		}
		return &ExitError{Code: code}
	}
	return nil
}

// forwardInput copies lines from in to the runner's input, flushing
// each one, and closes the input when in runs dry.
func forwardInput(in io.Reader, r *procpipe.Runner) {
	w := r.InputWriter()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if _, err := w.WriteString(scanner.Text() + "\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
	_ = r.CloseInput()
}

func printSummary(
	w io.Writer, r *procpipe.Runner, res procpipe.Result, elapsed time.Duration) {
	resOut, resErr := r.PumpResults()
	bold := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	tbl := table.New("FIELD", "VALUE").WithWriter(w)
	tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
		return bold.Render(fmt.Sprintf(format, vals...))
	})
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	tbl.AddRow("id", r.ID())
	tbl.AddRow("pid", r.Pid())
	tbl.AddRow("exit", res.String())
	tbl.AddRow("stdOut", resOut.String())
	tbl.AddRow("stdErr", resErr.String())
	tbl.AddRow("elapsed", elapsed.Round(time.Millisecond))
	tbl.Print()
}
