package calendar

import (
	"time"

	"github.com/joshua-takyi/entcal/internal/models"
	"github.com/teambition/rrule-go"
)

const (
	WeekDays          = 7
	RollingWindowDays = 60
	// MinMonthCells keeps every month grid at least five rows tall.
	MinMonthCells = 35
)

// WeekDates returns seven consecutive days starting at anchor's calendar day.
// The anchor is not aligned to a week boundary.
func WeekDates(anchor time.Time) []time.Time {
	return consecutiveDays(StartOfDay(anchor), WeekDays)
}

// RollingDates returns the sixty day look-ahead window starting at anchor.
func RollingDates(anchor time.Time) []time.Time {
	return consecutiveDays(StartOfDay(anchor), RollingWindowDays)
}

// MonthDates returns the displayed grid for a month: it starts on the Sunday
// on or before the 1st, covers the last day, ends on a Saturday, and holds at
// least MinMonthCells days. A nil loc means time.Local.
func MonthDates(year int, month time.Month, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	cells := daysBetween(start, last) + 1
	if rem := cells % WeekDays; rem != 0 {
		cells += WeekDays - rem
	}
	if cells < MinMonthCells {
		cells = MinMonthCells
	}
	return consecutiveDays(start, cells)
}

// DateKey renders t's calendar day in the bucket key form.
func DateKey(t time.Time) string {
	return t.Format(models.DateLayout)
}

// GroupByDate buckets events by their event_date string, verbatim. Each
// bucket keeps the input order.
func GroupByDate(events []models.Event) map[string][]models.Event {
	buckets := make(map[string][]models.Event)
	for _, ev := range events {
		buckets[ev.EventDate] = append(buckets[ev.EventDate], ev)
	}
	return buckets
}

// IsSameDay compares year, month and day of each value in its own location.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsToday(t time.Time) bool {
	return IsSameDay(t, time.Now().In(t.Location()))
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func consecutiveDays(start time.Time, n int) []time.Time {
	if n <= 0 {
		return []time.Time{}
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: start,
		Count:   n,
	})
	if err != nil {
		// DAILY with a positive count is always a valid rule
		panic(err)
	}
	return rule.All()
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
