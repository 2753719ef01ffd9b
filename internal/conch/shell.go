// Package conch is a scriptable child process.  It reads commands
// from stdin and answers on stdout and stderr, behaving well or
// badly on request.  It exists to drive tests and demos of procpipe.
package conch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Flag names.
const (
	FlagIgnoreEOF     = "ignore-eof"
	FlagExitOnErr     = "exit-on-error"
	FlagFailOnStartup = "fail-on-startup"
	FlagEncoding      = "encoding"
	FlagPrompt        = "prompt"
)

// All individual commands.
const (
	CmdHelp    = "help"
	CmdQuit    = "quit"
	CmdEcho    = "echo"
	CmdErr     = "err"
	CmdSleep   = "sleep"
	CmdCount   = "count"
	CmdExit    = "exit"
	cmdVersion = "version"
)

// AllCommands can be used in help and validation.
var AllCommands = []string{
	CmdHelp,
	CmdEcho,
	CmdErr,
	CmdCount,
	CmdSleep,
	cmdVersion,
	CmdExit,
	CmdQuit,
}

const versionOfProgram = "v1.2.3"

// ErrStartup is returned when told to fail on startup.
var ErrStartup = errors.New("ordered to fail on startup")

// Config adjusts the shell's behavior.
type Config struct {
	// IgnoreEOF keeps the shell alive after its input ends,
	// until its context is done.
	IgnoreEOF bool
	// ExitOnError makes the first bad command end the shell with code 1.
	ExitOnError bool
	// FailOnStartup ends the shell with code 1 before reading anything.
	FailOnStartup bool
	// Prompt, if not empty, is printed to stdout before each
	// command, without a newline.
	Prompt string
}

// Shell parses its input, executing anything that validates as a
// command.  See AllCommands for the complete list.
type Shell struct {
	cfg     Config
	stdOut  io.Writer
	stdErr  io.Writer
	scanner *bufio.Scanner
}

// NewShell returns a new instance.
func NewShell(in io.Reader, out, errOut io.Writer, cfg Config) *Shell {
	return &Shell{
		cfg:     cfg,
		stdOut:  out,
		stdErr:  errOut,
		scanner: bufio.NewScanner(in),
	}
}

// Run drains the shell's input, executing commands, and returns
// the exit code the program should end with.
//
//goland:noinspection GoUnhandledErrorResult
func (s *Shell) Run(ctx context.Context) (int, error) {
	if s.cfg.FailOnStartup {
		fmt.Fprintln(s.stdErr, ErrStartup.Error())
		return 1, ErrStartup
	}
	s.maybeShowPrompt()
	for s.scanner.Scan() {
		done, code, err := s.handleCommand(ctx, normalizeCommand(s.scanner.Text()))
		if err != nil {
			fmt.Fprintln(s.stdErr, err.Error())
			if s.cfg.ExitOnError {
				return 1, err
			}
		}
		if done {
			return code, nil
		}
		s.maybeShowPrompt()
	}
	if err := s.scanner.Err(); err != nil {
		fmt.Fprintln(s.stdErr, err.Error())
		return 1, err
	}
	if s.cfg.IgnoreEOF {
		<-ctx.Done()
	}
	return 0, nil
}

func (s *Shell) maybeShowPrompt() {
	if s.cfg.Prompt != "" {
		fmt.Fprint(s.stdOut, s.cfg.Prompt)
	}
}

//goland:noinspection GoUnhandledErrorResult
func (s *Shell) handleCommand(
	ctx context.Context, cmd string) (done bool, code int, err error) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "":
		// Ignore empty commands.
		return
	case CmdQuit:
		return true, 0, nil
	case CmdHelp:
		fmt.Fprintf(s.stdOut, "Commands: %v\n", AllCommands)
		return
	case cmdVersion:
		fmt.Fprintln(s.stdOut, versionOfProgram)
		return
	case CmdEcho:
		fmt.Fprintln(s.stdOut, arg)
		return
	case CmdErr:
		fmt.Fprintln(s.stdErr, arg)
		return
	case CmdCount:
		var n int
		if n, err = strconv.Atoi(arg); err != nil {
			return false, 0, fmt.Errorf("count %q not a number", arg)
		}
		for i := 1; i <= n; i++ {
			fmt.Fprintf(s.stdOut, "%d\n", i)
		}
		return
	case CmdSleep:
		var d time.Duration
		if d, err = time.ParseDuration(arg); err != nil {
			return
		}
		// Simulate a long-running command.
		select {
		case <-time.After(d):
		case <-ctx.Done():
		}
		return
	case CmdExit:
		if code, err = strconv.Atoi(arg); err != nil {
			return false, 0, fmt.Errorf("exit code %q not a number", arg)
		}
		return true, code, nil
	}
	return false, 0, fmt.Errorf("unrecognized command: %q", cmd)
}

func normalizeCommand(c string) string {
	c = strings.TrimSpace(c)
	// strip trailing semi-colon.
	if len(c) > 0 && c[len(c)-1] == ';' {
		c = c[:len(c)-1]
	}
	return c
}
