package main

import (
	"fmt"

	"github.com/joshua-takyi/entcal/internal/calendar"
	"github.com/spf13/cobra"
)

var icsCmd = &cobra.Command{
	Use:   "ics <event-id>",
	Short: "Write an event as an .ics file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")
		sink := &calendar.FileSink{Dir: dir}
		if err := eventService.ExportICS(cmd.Context(), viewer(), args[0], sink); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), sink.Written)
		return nil
	},
}

func init() {
	icsCmd.Flags().String("out", ".", "directory to write the file into")
}
