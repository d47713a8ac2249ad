package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/router"
)

type resolution struct {
	Input   string               `json:"input"`
	Current *router.CurrentRoute `json:"current,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func newResolveCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve FILE URL...",
		Short: "Navigate through URLs in order and print the committed routes",
		Long: "Navigate a router built from the route file through each URL in order, the way\n" +
			"an application would, and print the route committed after each step.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(args[0])
			if err != nil {
				return err
			}
			r, err := router.New(t.root, t.routes, router.WithLogger(g.log))
			if err != nil {
				return err
			}
			defer r.Stop()

			ctx := cmd.Context()
			var (
				results []resolution
				errs    []error
			)
			for _, url := range args[1:] {
				res := resolution{Input: url}
				ok, err := r.LoadURL(ctx, url)
				switch {
				case err != nil:
					res.Error = err.Error()
					errs = append(errs, fmt.Errorf("%s: %w", url, err))
					g.log.DebugContext(ctx, "navigation failed", logger.URL(url), logger.Error(err))
				case !ok:
					res.Error = "navigation rejected"
				default:
					res.Current = r.Current()
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
				return errors.Join(errs...)
			}
			for _, res := range results {
				if res.Current == nil {
					fmt.Fprintf(out, "%s\terror: %s\n", res.Input, res.Error)
					continue
				}
				fmt.Fprintf(out, "%s\t-> /%s", res.Input, res.Current.URL)
				if res.Current.Title != "" {
					fmt.Fprintf(out, "\t%q", res.Current.Title)
				}
				fmt.Fprintln(out)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
