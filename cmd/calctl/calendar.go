package main

import (
	"fmt"
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/spf13/cobra"
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Print a month grid with the events of each day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		today := eventService.Today()
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")
		if year == 0 {
			year = today.Year()
		}
		if month == 0 {
			month = int(today.Month())
		}

		grid, err := eventService.MonthGrid(cmd.Context(), viewer(), year, time.Month(month), filtersFromFlags(cmd))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), grid)
		}
		printGrid(cmd.OutOrStdout(), grid)
		return nil
	},
}

var rollingCmd = &cobra.Command{
	Use:   "rolling",
	Short: "Print the next 60 days of events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor := eventService.Today()
		if v, _ := cmd.Flags().GetString("anchor"); v != "" {
			parsed, err := time.ParseInLocation(models.DateLayout, v, eventService.Location())
			if err != nil {
				return fmt.Errorf("--anchor must be YYYY-MM-DD: %w", err)
			}
			anchor = parsed
		}

		grid, err := eventService.RollingGrid(cmd.Context(), viewer(), anchor, filtersFromFlags(cmd))
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), grid)
		}
		printGrid(cmd.OutOrStdout(), grid)
		return nil
	},
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "match title, description, venue or city")
	cmd.Flags().StringSlice("genre", nil, "genre id (repeatable)")
	cmd.Flags().String("state", "", "two letter state code")
	cmd.Flags().String("city", "", "city name")
	cmd.Flags().String("zip", "", "zip code prefix")
}

func filtersFromFlags(cmd *cobra.Command) models.EventFilters {
	search, _ := cmd.Flags().GetString("search")
	genres, _ := cmd.Flags().GetStringSlice("genre")
	state, _ := cmd.Flags().GetString("state")
	city, _ := cmd.Flags().GetString("city")
	zip, _ := cmd.Flags().GetString("zip")

	return models.EventFilters{}.
		WithSearch(search).
		WithGenres(genres...).
		WithState(state).
		WithCity(city).
		WithZipCode(zip)
}

func init() {
	monthCmd.Flags().Int("year", 0, "year (defaults to the current one)")
	monthCmd.Flags().Int("month", 0, "month 1-12 (defaults to the current one)")
	addFilterFlags(monthCmd)

	rollingCmd.Flags().String("anchor", "", "first day YYYY-MM-DD (defaults to today)")
	addFilterFlags(rollingCmd)
}
