package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshua-takyi/entcal/internal/bus"
	"github.com/joshua-takyi/entcal/internal/models"
)

// csvAliases maps each events column to the header spellings accepted for it,
// checked in order.
var csvAliases = []struct {
	column  string
	headers []string
}{
	{"title", []string{"title", "event", "name", "event name"}},
	{"description", []string{"description", "details", "info"}},
	{"event_date", []string{"date", "event date", "event_date"}},
	{"event_time", []string{"time", "event time", "event_time", "start time"}},
	{"venue_name", []string{"venue", "venue name", "venue_name", "location"}},
	{"address", []string{"address", "street"}},
	{"city", []string{"city"}},
	{"state", []string{"state"}},
	{"zip_code", []string{"zip", "zip code", "zip_code", "zipcode", "postal code"}},
	{"price", []string{"price", "admission", "cost"}},
	{"dress_code", []string{"dress code", "dress_code", "dresscode"}},
	{"age_limit", []string{"age", "age limit", "age_limit"}},
	{"phone_number", []string{"phone", "phone number", "phone_number", "contact"}},
	{"image_url", []string{"image", "image url", "image_url", "photo"}},
}

var csvRequired = []string{"title", "event_date", "city", "state"}

var ErrEmptyImport = errors.New("no valid data found in CSV file")

type ImportResult struct {
	Added  int      `json:"added"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// ImportCSV inserts every usable row as a pending event owned by the viewer.
// Bad rows are counted and reported, never fatal.
func (es *EventService) ImportCSV(ctx context.Context, viewer Viewer, r io.Reader) (*ImportResult, error) {
	if !viewer.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return es.importRows(ctx, viewer.UserID, viewer.AccessToken, r)
}

// ImportCSVAs runs an import for organizerID outside a request, as the CLI does.
func (es *EventService) ImportCSVAs(ctx context.Context, organizerID string, r io.Reader) (*ImportResult, error) {
	if organizerID == "" {
		return nil, fmt.Errorf("%w: organizer id is required", models.ErrInvalidInput)
	}
	return es.importRows(ctx, organizerID, "", r)
}

func (es *EventService) importRows(ctx context.Context, organizerID, accessToken string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed CSV: %v", models.ErrInvalidInput, err)
	}
	records = dropBlankRecords(records)
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, ErrEmptyImport)
	}

	index := headerIndex(records[0])
	result := &ImportResult{Errors: []string{}}

	for i, rec := range records[1:] {
		line := i + 2
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := csvRow(rec, index)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		row["organizer_id"] = organizerID
		row["status"] = models.StatusPending
		row["featured"] = false

		if _, err := es.writer.CreateEvent(ctx, row, nil, accessToken); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		result.Added++
	}

	es.logger.Info("CSV import completed", "organizer_id", organizerID, "added", result.Added, "failed", result.Failed)
	es.publish(ctx, bus.TopicEventsImported, bus.EventsImported{
		OrganizerID: organizerID,
		Added:       result.Added,
		Failed:      result.Failed,
	})
	if result.Added > 0 {
		es.snapshot.Invalidate()
	}
	return result, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	return index
}

// csvRow resolves aliases for one record. Empty optional cells are omitted
// so the column keeps its database default.
func csvRow(rec []string, index map[string]int) (map[string]interface{}, error) {
	cell := func(headers []string) string {
		for _, h := range headers {
			if i, ok := index[h]; ok && i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	row := map[string]interface{}{}
	for _, a := range csvAliases {
		v := cell(a.headers)
		if v == "" {
			continue
		}
		switch a.column {
		case "price":
			price, err := strconv.ParseFloat(strings.TrimPrefix(v, "$"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price %q", v)
			}
			row[a.column] = price
		case "state":
			row[a.column] = strings.ToUpper(v)
		default:
			row[a.column] = v
		}
	}

	var missing []string
	for _, col := range csvRequired {
		if _, ok := row[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	if _, ok := row["address"]; !ok {
		row["address"] = ""
	}
	return row, nil
}

func dropBlankRecords(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, v := range rec {
			if strings.TrimSpace(v) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
