package calendar

import (
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
)

type ViewKind string

const (
	ViewWeek    ViewKind = "week"
	ViewMonth   ViewKind = "month"
	ViewRolling ViewKind = "rolling"
)

const (
	// MonthCellLimit is how many events a month cell lists before "+N more".
	MonthCellLimit = 3
	// RollingAlwaysShown is how many leading days of the rolling view are
	// listed even when empty.
	RollingAlwaysShown = 7
)

type Day struct {
	Date    string         `json:"date"`
	Weekday string         `json:"weekday"`
	IsToday bool           `json:"is_today"`
	InMonth bool           `json:"in_month"`
	Events  []models.Event `json:"events"`
	More    int            `json:"more,omitempty"`
}

type Grid struct {
	View  ViewKind `json:"view"`
	Title string   `json:"title"`
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []Day    `json:"days"`
	Total int      `json:"total"`
}

func WeekView(anchor time.Time, events []models.Event) Grid {
	dates := WeekDates(anchor)
	g := build(ViewWeek, dates, GroupByDate(events), func(time.Time) bool { return true }, 0)
	g.Title = dates[0].Format("Jan 2") + " - " + dates[len(dates)-1].Format("Jan 2, 2006")
	return g
}

func MonthView(year int, month time.Month, loc *time.Location, events []models.Event) Grid {
	dates := MonthDates(year, month, loc)
	inMonth := func(d time.Time) bool { return d.Month() == month && d.Year() == year }
	g := build(ViewMonth, dates, GroupByDate(events), inMonth, MonthCellLimit)
	g.Title = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	return g
}

// RollingView lists the sixty day window, skipping empty days after the first week.
func RollingView(anchor time.Time, events []models.Event) Grid {
	dates := RollingDates(anchor)
	g := build(ViewRolling, dates, GroupByDate(events), func(time.Time) bool { return true }, 0)
	days := make([]Day, 0, len(g.Days))
	for i, d := range g.Days {
		if len(d.Events) > 0 || i < RollingAlwaysShown {
			days = append(days, d)
		}
	}
	g.Days = days
	g.Title = "Next 60 Days"
	return g
}

func build(kind ViewKind, dates []time.Time, buckets map[string][]models.Event, inMonth func(time.Time) bool, limit int) Grid {
	g := Grid{
		View:  kind,
		Start: DateKey(dates[0]),
		End:   DateKey(dates[len(dates)-1]),
		Days:  make([]Day, 0, len(dates)),
	}
	for _, d := range dates {
		evs := buckets[DateKey(d)]
		day := Day{
			Date:    DateKey(d),
			Weekday: d.Weekday().String(),
			IsToday: IsToday(d),
			InMonth: inMonth(d),
			Events:  evs,
		}
		if day.Events == nil {
			day.Events = []models.Event{}
		}
		if limit > 0 && len(evs) > limit {
			day.Events = evs[:limit:limit]
			day.More = len(evs) - limit
		}
		g.Total += len(evs)
		g.Days = append(g.Days, day)
	}
	return g
}
