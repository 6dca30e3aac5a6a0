package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/joshua-takyi/entcal/internal/models"
)

const (
	CalendarContentType = "text/calendar"
	ProductID           = "-//Entertainment Calendar//EN"
	UIDDomain           = "entertainmentcal.com"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DownloadSink receives a finished export for saving on the client side.
type DownloadSink interface {
	Save(filename, contentType string, payload []byte) error
}

// Exporter turns a single event into an iCalendar document. Dates and times
// are read as wall clock values in Location and written in UTC.
type Exporter struct {
	Location *time.Location
	Now      func() time.Time
}

func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{Location: loc, Now: time.Now}
}

// Serialize renders ev as a VCALENDAR with one VEVENT. Without an end date
// DTEND repeats DTSTART.
func (x *Exporter) Serialize(ev models.Event) (string, error) {
	start, err := x.compose(ev.EventDate, ev.EventTime)
	if err != nil {
		return "", fmt.Errorf("event %s start: %w", ev.ID, err)
	}
	end := start
	if ev.EndDate != nil && *ev.EndDate != "" {
		if end, err = x.compose(*ev.EndDate, ev.EndTime); err != nil {
			return "", fmt.Errorf("event %s end: %w", ev.ID, err)
		}
	}

	cal := ical.NewCalendarFor("entcal")
	cal.SetProductId(ProductID)

	vevent := cal.AddEvent(ev.ID + "@" + UIDDomain)
	vevent.SetDtStampTime(x.now())
	vevent.SetStartAt(start)
	vevent.SetEndAt(end)
	vevent.SetSummary(ev.Title)
	vevent.SetDescription(derefString(ev.Description))
	vevent.SetLocation(joinNonEmpty(", ", derefString(ev.VenueName), ev.Address, ev.City, ev.State))

	return cal.Serialize(ical.WithNewLineWindows), nil
}

// Export serializes ev and hands the document to sink under Filename(ev.Title).
func (x *Exporter) Export(ev models.Event, sink DownloadSink) error {
	doc, err := x.Serialize(ev)
	if err != nil {
		return err
	}
	return sink.Save(Filename(ev.Title), CalendarContentType, []byte(doc))
}

// Filename replaces every non alphanumeric character of title with an
// underscore and appends .ics.
func Filename(title string) string {
	return unsafeFilenameChars.ReplaceAllString(title, "_") + ".ics"
}

func (x *Exporter) compose(date string, clock *string) (time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, date, x.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if clock == nil || *clock == "" {
		return d, nil
	}
	h, m, s, err := parseClock(*clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, s, 0, x.location()), nil
}

func (x *Exporter) location() *time.Location {
	if x.Location == nil {
		return time.Local
	}
	return x.Location
}

func (x *Exporter) now() time.Time {
	if x.Now == nil {
		return time.Now()
	}
	return x.Now()
}

// parseClock accepts HH:MM and the HH:MM:SS form postgres returns for time columns.
func parseClock(v string) (int, int, int, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Hour(), t.Minute(), t.Second(), nil
		}
	}
	return 0, 0, 0, fmt.Errorf("invalid time %q", v)
}

// FileSink writes exports into Dir.
type FileSink struct {
	Dir string
	// Written holds the path of the last saved file.
	Written string
}

func (s *FileSink) Save(filename, _ string, payload []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	s.Written = path
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
