package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joshua-takyi/entcal/internal/calendar"
	"github.com/joshua-takyi/entcal/internal/models"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printGrid lists every day that has events, plus the always-shown ones of
// a rolling view.
func printGrid(w io.Writer, g calendar.Grid) {
	fmt.Fprintf(w, "%s (%d events)\n", g.Title, g.Total)
	for _, d := range g.Days {
		if g.View == calendar.ViewMonth && (!d.InMonth || len(d.Events) == 0) {
			continue
		}
		marker := ""
		if d.IsToday {
			marker = " *"
		}
		fmt.Fprintf(w, "\n%s %s%s\n", d.Date, d.Weekday[:3], marker)
		if len(d.Events) == 0 {
			fmt.Fprintln(w, "  -")
		}
		for _, ev := range d.Events {
			fmt.Fprintf(w, "  %s%s\n", clock(ev), ev.Title)
		}
		if d.More > 0 {
			fmt.Fprintf(w, "  +%d more\n", d.More)
		}
	}
}

func clock(ev models.Event) string {
	if ev.EventTime == nil || len(*ev.EventTime) < 5 {
		return ""
	}
	return (*ev.EventTime)[:5] + "  "
}
