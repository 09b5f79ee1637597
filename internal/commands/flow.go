package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
	"github.com/metacraft-labs/codetracer/pkg/trace"
)

func NewFlowCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	var mode string

	flowCmd := &cobra.Command{
		Use:   "flow <path> <line>",
		Short: "Traces the values flowing through a source line.",
		Long:  `Shows every recorded visit of a source line with the tracked values before and after each visit, including loop iteration structure.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			line, parseErr := strconv.Atoi(args[1])
			if parseErr != nil {
				return fmt.Errorf("line must be an integer, got %q", args[1])
			}

			if mode != trace.FlowModeCall && mode != trace.FlowModeLine {
				return fmt.Errorf("mode must be %q or %q, got %q", trace.FlowModeCall, trace.FlowModeLine, mode)
			}

			session, openErr := opts.openSession(ctx, log)
			if openErr != nil {
				return openErr
			}
			defer session.Close(ctx)

			valueTrace, flowErr := session.ValueTrace(ctx, args[0], line, mode)
			if flowErr != nil {
				return flowErr
			}

			for _, step := range valueTrace.Steps {
				fmt.Printf("%8d iteration=%d %s | %s => %s\n",
					step.Ticks, step.Iteration, step.Location.String(),
					renderValues(step.BeforeValues), renderValues(step.AfterValues))
			}
			for _, loop := range valueTrace.Loops {
				fmt.Printf("loop lines %d-%d, %d iterations\n", loop.StartLine, loop.EndLine, loop.IterationCount)
			}

			return nil
		},
	}

	flowCmd.Flags().StringVar(&mode, "mode", trace.FlowModeLine, "Trace mode: 'line' covers every visit, 'call' only the most recent call")

	return flowCmd, nil
}

func renderValues(values map[string]string) string {
	if len(values) == 0 {
		return "-"
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	rendered := make([]string, 0, len(names))
	for _, name := range names {
		rendered = append(rendered, name+"="+values[name])
	}
	return strings.Join(rendered, " ")
}
