package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
)

func NewTerminalCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	var startLine, endLine int

	terminalCmd := &cobra.Command{
		Use:   "terminal",
		Short: "Prints the terminal output captured in the recording.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, openErr := opts.openSession(ctx, log)
			if openErr != nil {
				return openErr
			}
			defer session.Close(ctx)

			output, terminalErr := session.TerminalOutput(ctx, startLine, endLine)
			if terminalErr != nil {
				return terminalErr
			}

			fmt.Print(output)
			return nil
		},
	}

	flags := terminalCmd.Flags()
	flags.IntVar(&startLine, "start-line", 0, "First output line to print")
	flags.IntVar(&endLine, "end-line", -1, "Last output line to print, -1 means to the end")

	return terminalCmd, nil
}
