package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
)

func NewSourceCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	sourceCmd := &cobra.Command{
		Use:   "source <path>",
		Short: "Prints a source file captured in the recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, openErr := opts.openSession(ctx, log)
			if openErr != nil {
				return openErr
			}
			defer session.Close(ctx)

			content, sourceErr := session.ReadSource(ctx, args[0])
			if sourceErr != nil {
				return sourceErr
			}

			fmt.Print(content)
			return nil
		},
	}

	return sourceCmd, nil
}
