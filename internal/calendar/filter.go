package calendar

import (
	"slices"
	"strings"

	"github.com/joshua-takyi/entcal/internal/models"
)

type stage func(ev *models.Event, f models.EventFilters) bool

// Every stage narrows the candidate set; all of them are AND-combined.
var stages = []stage{
	matchSearch,
	matchGenres,
	matchState,
	matchCity,
	matchZip,
	matchRadius,
	matchDateRange,
	matchPriceRange,
	matchAgeLimit,
}

// Apply returns the events that satisfy every axis of f, in input order.
// The result is always a new slice and events are copied, so the caller's
// collection is never modified. When the geo axis is active each retained
// event carries its Distance in miles.
func Apply(events []models.Event, f models.EventFilters) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		candidate := ev
		if keep(&candidate, f) {
			out = append(out, candidate)
		}
	}
	return out
}

func keep(ev *models.Event, f models.EventFilters) bool {
	for _, s := range stages {
		if !s(ev, f) {
			return false
		}
	}
	return true
}

func matchSearch(ev *models.Event, f models.EventFilters) bool {
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(ev.Title), q) ||
		(ev.Description != nil && strings.Contains(strings.ToLower(*ev.Description), q)) ||
		strings.Contains(strings.ToLower(ev.City), q)
}

// matchGenres is an OR within the selected set.
func matchGenres(ev *models.Event, f models.EventFilters) bool {
	if len(f.Genres) == 0 {
		return true
	}
	return slices.ContainsFunc(f.Genres, ev.HasGenre)
}

func matchState(ev *models.Event, f models.EventFilters) bool {
	return f.State == "" || ev.State == f.State
}

func matchCity(ev *models.Event, f models.EventFilters) bool {
	return f.City == "" || strings.Contains(strings.ToLower(ev.City), strings.ToLower(f.City))
}

func matchZip(ev *models.Event, f models.EventFilters) bool {
	return f.ZipCode == "" || (ev.ZipCode != nil && *ev.ZipCode == f.ZipCode)
}

// matchRadius drops events without coordinates and fails closed on a
// non-finite distance.
func matchRadius(ev *models.Event, f models.EventFilters) bool {
	if !f.HasLocation() {
		return true
	}
	if !ev.HasCoordinates() {
		return false
	}
	d := DistanceMiles(*f.Latitude, *f.Longitude, *ev.Latitude, *ev.Longitude)
	if !isFinite(d) {
		return false
	}
	ev.Distance = &d
	return d <= *f.Radius
}

// matchDateRange compares YYYY-MM-DD strings lexicographically.
func matchDateRange(ev *models.Event, f models.EventFilters) bool {
	if f.StartDate != "" && ev.EventDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && ev.EventDate > f.EndDate {
		return false
	}
	return true
}

func matchPriceRange(ev *models.Event, f models.EventFilters) bool {
	price := ev.PriceOrZero()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}
	return true
}

func matchAgeLimit(ev *models.Event, f models.EventFilters) bool {
	return f.AgeLimit == "" || (ev.AgeLimit != nil && *ev.AgeLimit == f.AgeLimit)
}
