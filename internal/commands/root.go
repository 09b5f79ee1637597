package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
	"github.com/metacraft-labs/codetracer/pkg/resiliency"
	"github.com/metacraft-labs/codetracer/pkg/trace"
)

// sessionOptions carries the persistent flags shared by every subcommand.
type sessionOptions struct {
	socketPath string
	tracePath  string
	waitFor    time.Duration
}

func NewRootCmd() (*cobra.Command, error) {
	log := logger.New("ctquery")

	rootCmd := &cobra.Command{
		Use:   "ctquery",
		Short: "Queries CodeTracer recordings through the backend-manager daemon",
		Long: `ctquery inspects recorded program executions: navigation state, variables,
the call tree, the event log, and captured terminal output.

A backend-manager daemon must be running; see the --socket flag when it
listens on a non-default path.`,
		SilenceUsage: true,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			log.Flush()
		},
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	opts := &sessionOptions{}
	persistentFlags := rootCmd.PersistentFlags()
	persistentFlags.StringVar(&opts.socketPath, "socket", "", "Path to the daemon socket (defaults to the well-known platform path)")
	persistentFlags.StringVar(&opts.tracePath, "trace", "", "Path to the recording to inspect")
	persistentFlags.DurationVar(&opts.waitFor, "wait-for", 10*time.Second, "How long to wait for the daemon socket to become reachable")
	log.AddLevelFlag(persistentFlags)

	if markErr := rootCmd.MarkPersistentFlagRequired("trace"); markErr != nil {
		return nil, fmt.Errorf("could not mark the 'trace' flag required: %w", markErr)
	}

	var setupErr error
	var cmd *cobra.Command

	if cmd, setupErr = NewInfoCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'info' command: %w", setupErr)
	}

	if cmd, setupErr = NewEventsCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'events' command: %w", setupErr)
	}

	if cmd, setupErr = NewCalltraceCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'calltrace' command: %w", setupErr)
	}

	if cmd, setupErr = NewFlowCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'flow' command: %w", setupErr)
	}

	if cmd, setupErr = NewTerminalCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'terminal' command: %w", setupErr)
	}

	if cmd, setupErr = NewSourceCommand(opts, log); cmd != nil {
		rootCmd.AddCommand(cmd)
	} else {
		return nil, fmt.Errorf("could not set up 'source' command: %w", setupErr)
	}

	return rootCmd, nil
}

// openSession opens the recording, retrying while the daemon socket is not
// reachable yet. Non-connection failures abort immediately.
func (o *sessionOptions) openSession(ctx context.Context, log *logger.Logger) (*trace.Session, error) {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(100*time.Millisecond),
		backoff.WithMaxInterval(time.Second),
		backoff.WithMaxElapsedTime(o.waitFor),
	)

	return resiliency.RetryGetWithBackOff(ctx, b, func() (*trace.Session, error) {
		session, openErr := trace.Open(ctx, o.tracePath, trace.SessionConfig{
			DaemonSocket: o.socketPath,
			Logger:       log.Logger,
		})
		if openErr != nil && !trace.IsConnectionError(openErr) {
			return nil, backoff.Permanent(openErr)
		}
		return session, openErr
	})
}
