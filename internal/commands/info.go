package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metacraft-labs/codetracer/pkg/logger"
)

func NewInfoCommand(opts *sessionOptions, log *logger.Logger) (*cobra.Command, error) {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Prints metadata about a recording.",
		Long:  `Prints the recorded program, language, working directory, source files, and event count as JSON.`,
		RunE:  getInfo(opts, log),
		Args:  cobra.NoArgs,
	}

	return infoCmd, nil
}

type traceInformation struct {
	Program     string   `json:"program"`
	Language    string   `json:"language"`
	WorkDir     string   `json:"workdir"`
	TotalEvents int      `json:"totalEvents"`
	SourceFiles []string `json:"sourceFiles"`
	Position    string   `json:"position"`
}

func getInfo(opts *sessionOptions, log *logger.Logger) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log := log.WithName("info")

		ctx := cmd.Context()

		session, openErr := opts.openSession(ctx, log)
		if openErr != nil {
			return openErr
		}
		defer session.Close(ctx)

		info := traceInformation{
			Program:     session.Program(),
			Language:    session.Language(),
			WorkDir:     session.WorkDir(),
			TotalEvents: session.TotalEvents(),
			SourceFiles: session.SourceFiles(),
			Position:    session.CurrentLocation().String(),
		}

		if serialized, marshalErr := json.Marshal(info); marshalErr != nil {
			log.Error(marshalErr, "could not serialize trace information")
			return marshalErr
		} else {
			fmt.Println(string(serialized))
		}

		return nil
	}
}
