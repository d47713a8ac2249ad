package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waypoint/core/logger"
)

type globalFlags struct {
	logLevel string
	logJSON  bool
	log      *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "waypoint",
		Short:         "Inspect and serve declarative route tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q: %w", g.logLevel, err)
			}
			opts := []logger.Option{logger.WithLevel(level), logger.WithOutput(cmd.ErrOrStderr())}
			if g.logJSON {
				opts = append(opts, logger.WithJSONFormatter())
			}
			g.log = logger.New(opts...)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&g.logJSON, "log-json", false, "write logs as JSON")

	cmd.AddCommand(
		newRoutesCmd(g),
		newResolveCmd(g),
		newServeCmd(g),
	)
	return cmd
}
