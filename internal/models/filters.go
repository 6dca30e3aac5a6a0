package models

import (
	"fmt"
	"slices"
	"strings"
)

// EventFilters is a value type: every With* method returns a modified copy
// and never shares the genre slice with the receiver. A zero value filters
// nothing.
type EventFilters struct {
	Search    string   `json:"search,omitempty" form:"search" validate:"max=200"`
	Genres    []string `json:"genres,omitempty" form:"genres"`
	State     string   `json:"state,omitempty" form:"state" validate:"omitempty,len=2"`
	City      string   `json:"city,omitempty" form:"city"`
	ZipCode   string   `json:"zip_code,omitempty" form:"zip"`
	Latitude  *float64 `json:"latitude,omitempty" form:"lat" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" form:"lon" validate:"omitempty,gte=-180,lte=180"`
	Radius    *float64 `json:"radius,omitempty" form:"radius" validate:"omitempty,gte=0"`
	StartDate string   `json:"start_date,omitempty" form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `json:"end_date,omitempty" form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MinPrice  *float64 `json:"min_price,omitempty" form:"min_price" validate:"omitempty,gte=0"`
	MaxPrice  *float64 `json:"max_price,omitempty" form:"max_price" validate:"omitempty,gte=0"`
	AgeLimit  string   `json:"age_limit,omitempty" form:"age_limit"`
}

func (f EventFilters) IsEmpty() bool {
	return f.Search == "" && len(f.Genres) == 0 && f.State == "" && f.City == "" &&
		f.ZipCode == "" && !f.HasLocation() && f.StartDate == "" && f.EndDate == "" &&
		f.MinPrice == nil && f.MaxPrice == nil && f.AgeLimit == ""
}

// HasLocation reports whether the geo radius stage is active.
func (f EventFilters) HasLocation() bool {
	return f.Latitude != nil && f.Longitude != nil && f.Radius != nil
}

func (f EventFilters) Validate() error {
	if err := Validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidInput)
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return fmt.Errorf("%w: start_date is after end_date", ErrInvalidInput)
	}
	return nil
}

// Normalized splits comma separated genre lists and trims text fields, so
// "?genres=a,b" and "?genres=a&genres=b" produce the same filter.
func (f EventFilters) Normalized() EventFilters {
	out := f.clone()
	out.Search = strings.TrimSpace(f.Search)
	out.State = strings.ToUpper(strings.TrimSpace(f.State))
	out.City = strings.TrimSpace(f.City)
	out.ZipCode = strings.TrimSpace(f.ZipCode)
	out.AgeLimit = strings.TrimSpace(f.AgeLimit)
	var genres []string
	for _, g := range f.Genres {
		for _, id := range strings.Split(g, ",") {
			if id = strings.TrimSpace(id); id != "" && !slices.Contains(genres, id) {
				genres = append(genres, id)
			}
		}
	}
	out.Genres = genres
	return out
}

func (f EventFilters) WithSearch(q string) EventFilters {
	out := f.clone()
	out.Search = q
	return out
}

func (f EventFilters) WithGenres(ids ...string) EventFilters {
	out := f.clone()
	out.Genres = slices.Clone(ids)
	return out
}

// ToggleGenre adds id when absent and removes it otherwise.
func (f EventFilters) ToggleGenre(id string) EventFilters {
	out := f.clone()
	if i := slices.Index(out.Genres, id); i >= 0 {
		out.Genres = slices.Delete(out.Genres, i, i+1)
	} else {
		out.Genres = append(out.Genres, id)
	}
	return out
}

func (f EventFilters) WithState(state string) EventFilters {
	out := f.clone()
	out.State = state
	return out
}

func (f EventFilters) WithCity(city string) EventFilters {
	out := f.clone()
	out.City = city
	return out
}

func (f EventFilters) WithZipCode(zip string) EventFilters {
	out := f.clone()
	out.ZipCode = zip
	return out
}

func (f EventFilters) WithLocation(lat, lon, radiusMiles float64) EventFilters {
	out := f.clone()
	out.Latitude, out.Longitude, out.Radius = &lat, &lon, &radiusMiles
	return out
}

func (f EventFilters) WithoutLocation() EventFilters {
	out := f.clone()
	out.Latitude, out.Longitude, out.Radius = nil, nil, nil
	return out
}

func (f EventFilters) WithDateRange(start, end string) EventFilters {
	out := f.clone()
	out.StartDate, out.EndDate = start, end
	return out
}

func (f EventFilters) WithMinPrice(min float64) EventFilters {
	out := f.clone()
	out.MinPrice = &min
	return out
}

func (f EventFilters) WithMaxPrice(max float64) EventFilters {
	out := f.clone()
	out.MaxPrice = &max
	return out
}

func (f EventFilters) WithAgeLimit(tag string) EventFilters {
	out := f.clone()
	out.AgeLimit = tag
	return out
}

func (f EventFilters) clone() EventFilters {
	out := f
	out.Genres = slices.Clone(f.Genres)
	return out
}
