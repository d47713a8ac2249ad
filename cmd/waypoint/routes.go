package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/waypoint/core/route"
)

func newRoutesCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes FILE",
		Short: "List every path pattern of a route file",
		Long: "List every full path pattern of a YAML or TOML route file. Routes resolved by a\n" +
			"navigation strategy cannot be listed ahead of navigation and make the command fail.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTable(args[0])
			if err != nil {
				return err
			}
			entries, err := route.Table(t.routes)
			if err != nil {
				return err
			}
			g.log.Debug("route table built", "file", args[0], "entries", len(entries))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tID\tCOMPONENT\tVIEWPORT\tTITLE\tREDIRECT")
			for _, e := range entries {
				fmt.Fprintf(w, "/%s\t%s\t%s\t%s\t%s\t%s\n", e.Path, e.ID, e.Component, e.Viewport, e.Title, e.RedirectTo)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}
