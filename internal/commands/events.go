package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
	"github.com/metacraft-labs/codetracer/pkg/trace"
)

func NewEventsCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	var start, count int
	var kind, search string

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Lists recorded events.",
		Long:  `Pages through the recorded event log: writes to standard streams and other observable side effects, ordered by execution time.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, openErr := opts.openSession(ctx, log)
			if openErr != nil {
				return openErr
			}
			defer session.Close(ctx)

			events, eventsErr := session.Events(ctx, start, count, trace.EventFilter{
				Kind:   kind,
				Search: search,
			})
			if eventsErr != nil {
				return eventsErr
			}

			for _, event := range events {
				where := ""
				if event.Location != nil {
					where = " " + event.Location.String()
				}
				fmt.Printf("%8d %-8s%s %q\n", event.Ticks, event.Kind, where, event.Message)
			}

			return nil
		},
	}

	flags := eventsCmd.Flags()
	flags.IntVar(&start, "start", 0, "Index of the first event to return")
	flags.IntVar(&count, "count", 50, "Maximum number of events to return")
	flags.StringVar(&kind, "kind", "", "Only return events of this kind")
	flags.StringVar(&search, "search", "", "Only return events whose message contains this text")

	return eventsCmd, nil
}
