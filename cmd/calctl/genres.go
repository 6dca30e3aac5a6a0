package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		genres, err := eventService.ListGenres(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), genres)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tNAME")
		for _, g := range genres {
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.ID, g.Slug, g.Name)
		}
		return w.Flush()
	},
}
