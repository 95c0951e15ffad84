package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTitle is the placeholder title for quick-created events
	DefaultTitle = "New Event"
	// DefaultColor is the accent color applied when none is set
	DefaultColor = "#f57c00"
	// DefaultDuration is the span given to an event that loses its all-day flag
	DefaultDuration = 30 * time.Minute
)

// Event is a scheduled calendar block
type Event struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id,omitempty"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	AllDay          bool      `json:"all_day"`
	BackgroundColor string    `json:"background_color,omitempty"`
	Description     string    `json:"description,omitempty"`
	CategoryID      string    `json:"category_id,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

// NewEvent creates an event with a generated id and defaults applied
func NewEvent(title string, start, end time.Time) Event {
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now()
	return Event{
		ID:              uuid.New().String(),
		Title:           title,
		Start:           start,
		End:             end,
		BackgroundColor: DefaultColor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Duration returns the event's span
func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// FlexTime decodes timestamps as stored by any backend generation:
// RFC3339 strings, unix seconds, or a {seconds,nanos} object.
type FlexTime struct {
	time.Time
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.ParseInLocation(layout, str, time.Local); err == nil {
				f.Time, f.Valid = t, true
				return nil
			}
		}
		return nil
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		f.Time, f.Valid = time.Unix(int64(secs), 0), true
		return nil
	}

	var ts struct {
		Seconds int64 `json:"seconds"`
		Nanos   int64 `json:"nanoseconds"`
	}
	if err := json.Unmarshal(data, &ts); err == nil && ts.Seconds != 0 {
		f.Time, f.Valid = time.Unix(ts.Seconds, ts.Nanos), true
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexTime) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.Format(time.RFC3339))
}

// Record is the loosely-typed event shape received from storage. Older
// backends stored timestamps in several encodings and omitted fields, so
// every field here is optional.
type Record struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	Title           string   `json:"title"`
	Start           FlexTime `json:"start"`
	End             FlexTime `json:"end"`
	AllDay          bool     `json:"all_day"`
	BackgroundColor string   `json:"background_color"`
	Description     string   `json:"description"`
	CategoryID      string   `json:"category_id"`
}

// FromRecord builds a canonical Event from a loose record. Records with a
// missing start or end get "now" substituted rather than failing: older
// schema versions produced malformed rows and losing them entirely is worse
// than a defaulted timestamp.
func FromRecord(r Record) Event {
	now := time.Now()
	start := now
	if r.Start.Valid {
		start = r.Start.Time
	}
	end := start
	if r.End.Valid {
		end = r.End.Time
	}

	e := Event{
		ID:              r.ID,
		UserID:          r.UserID,
		Title:           r.Title,
		Start:           start,
		End:             end,
		AllDay:          r.AllDay,
		BackgroundColor: r.BackgroundColor,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Title == "" {
		e.Title = DefaultTitle
	}
	if e.BackgroundColor == "" {
		e.BackgroundColor = DefaultColor
	}
	return Normalize(e)
}

// Normalize enforces the event invariants: end never precedes start, and
// all-day events cover whole local days starting at midnight.
func Normalize(e Event) Event {
	if e.End.Before(e.Start) {
		e.End = e.Start
	}
	if e.AllDay {
		e.Start = Midnight(e.Start)
		end := Midnight(e.End)
		if end.Before(e.End) {
			end = end.AddDate(0, 0, 1) // partial trailing day rounds up
		}
		if !end.After(e.Start) {
			end = e.Start.AddDate(0, 0, 1)
		}
		e.End = end
	}
	return e
}

// Midnight returns local midnight of t's day
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
