package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import events from a CSV file as pending submissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		organizer, _ := cmd.Flags().GetString("organizer")
		if _, err := uuid.Parse(organizer); err != nil {
			return fmt.Errorf("--organizer must be a user id: %w", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		result, err := eventService.ImportCSVAs(cmd.Context(), organizer, f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), result)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added:  %d\n", result.Added)
		fmt.Fprintf(out, "Failed: %d\n", result.Failed)
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("organizer", "", "user id that owns the imported events")
	_ = importCmd.MarkFlagRequired("organizer")
}
