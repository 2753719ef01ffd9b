package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/monopole/procpipe"
	"github.com/monopole/procpipe/internal/conch"
	"github.com/spf13/cobra"
	"golang.org/x/text/transform"
)

func newConchCommand() *cobra.Command {
	var (
		cfg     conch.Config
		encName string
	)
	cmd := &cobra.Command{
		Use:   "conch",
		Short: "Read commands from stdin, answering on stdout and stderr",
		Long: `conch is a scripted child process for trying out procpipe.

Commands: echo TEXT, err TEXT, count N, sleep DURATION,
version, exit CODE, quit, help.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := procpipe.LookupEncoding(encName)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			sh := conch.NewShell(
				transform.NewReader(cmd.InOrStdin(), enc.NewDecoder()),
				enc.NewEncoder().Writer(cmd.OutOrStdout()),
				enc.NewEncoder().Writer(cmd.ErrOrStderr()),
				cfg)
			code, _ := sh.Run(ctx)
			if code != 0 {
				// The shell already reported any error.
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&cfg.IgnoreEOF, conch.FlagIgnoreEOF, false,
		"Keep running after stdin ends, until signalled.")
	f.BoolVar(&cfg.ExitOnError, conch.FlagExitOnErr, false,
		"Exit on error, else continue accepting commands.")
	f.BoolVar(&cfg.FailOnStartup, conch.FlagFailOnStartup, false,
		"Exit with error on startup, before processing any commands.")
	f.StringVar(&cfg.Prompt, conch.FlagPrompt, "",
		"Prompt to print before reading each command.")
	f.StringVar(&encName, conch.FlagEncoding, "UTF-8",
		"Encoding of stdin, stdout and stderr.")
	return cmd
}
