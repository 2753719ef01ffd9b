package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEchoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "echo [args...]",
		Short: "Print each argument in brackets on its own line",
		Long: `Print each argument in brackets on its own line,
to show how a command line was split into arguments.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
