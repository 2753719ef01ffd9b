// Package cli holds the procpipe command tree.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/monopole/procpipe"
	"github.com/spf13/cobra"
)

// ExitError carries an exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCommand returns the procpipe command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "procpipe",
		Short: "Run external processes with line oriented output",
		Long: `procpipe runs a command with piped stdio, prints its stdout and
stderr line by line, and shuts it down in bounded time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				procpipe.VerboseLoggingEnable()
			}
		},
	}
	root.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "Log runner internals to stderr.")
	root.AddCommand(newRunCommand())
	root.AddCommand(newEchoCommand())
	root.AddCommand(newConchCommand())
	return root
}

// Execute runs the command tree with the given args and stdio,
// returning the process exit code.
func Execute(args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.Execute()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	_, _ = fmt.Fprintln(errOut, "Error:", err.Error())
	return 1
}
