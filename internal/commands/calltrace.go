package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
	"github.com/metacraft-labs/codetracer/pkg/trace"
)

func NewCalltraceCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	var start, count, depth, limit int
	var search string

	calltraceCmd := &cobra.Command{
		Use:   "calltrace",
		Short: "Shows the recorded call tree.",
		Long:  `Pages through the recorded call tree, or searches it by function name with --search.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, openErr := opts.openSession(ctx, log)
			if openErr != nil {
				return openErr
			}
			defer session.Close(ctx)

			var calls []trace.Call
			var queryErr error
			if search != "" {
				calls, queryErr = session.SearchCalltrace(ctx, search, limit)
			} else {
				calls, queryErr = session.Calltrace(ctx, start, count, depth)
			}
			if queryErr != nil {
				return queryErr
			}

			for _, call := range calls {
				returned := ""
				if call.ReturnValue != nil {
					returned = " -> " + call.ReturnValue.Value
				}
				fmt.Printf("%s%s%s  (%s)\n",
					strings.Repeat("  ", call.Depth), call.FunctionName, returned, call.Location.String())
			}

			return nil
		},
	}

	flags := calltraceCmd.Flags()
	flags.IntVar(&start, "start", 0, "Index of the first call to return")
	flags.IntVar(&count, "count", 50, "Maximum number of calls to return")
	flags.IntVar(&depth, "depth", 3, "How many levels of callees to expand")
	flags.StringVar(&search, "search", "", "Return calls whose function name contains this text instead of paging")
	flags.IntVar(&limit, "limit", 50, "Maximum number of search results")

	return calltraceCmd, nil
}
