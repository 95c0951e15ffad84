// Package migrate converts legacy event blobs into canonical events. The
// legacy backend stored one JSON document per user with an "events" array,
// written by several schema generations: colors under "color" or
// "backgroundColor", descriptions either top-level or nested under
// "extendedProps", and timestamps in whatever encoding the backend of the
// day used.
package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
)

// legacyTitle is what untitled legacy events are imported as
const legacyTitle = "Untitled"

// LegacyRecord captures every field name observed in historical blobs
// alongside the canonical ones. Canonical names always win, which is what
// makes Convert idempotent: output of a previous run carries only
// canonical names, so a second run touches nothing.
type LegacyRecord struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Start  model.FlexTime `json:"start"`
	End    model.FlexTime `json:"end"`
	AllDay bool           `json:"allDay"`

	AllDaySnake     bool   `json:"all_day"`
	BackgroundColor string `json:"background_color"`
	BackgroundCamel string `json:"backgroundColor"`
	Color           string `json:"color"`

	Description   string `json:"description"`
	ExtendedProps struct {
		Description string `json:"description"`
	} `json:"extendedProps"`

	CategoryID string `json:"category_id"`
}

// Blob is the wholesale legacy document shape
type Blob struct {
	Events []LegacyRecord `json:"events"`
}

// ConvertRecords maps legacy records to canonical events. Missing fields
// default rather than fail; the transform is a no-op on already-migrated
// data and safe to run twice.
func ConvertRecords(records []LegacyRecord) []model.Event {
	events := make([]model.Event, 0, len(records))
	for _, r := range records {
		color := r.BackgroundColor
		if color == "" {
			color = r.BackgroundCamel
		}
		if color == "" {
			color = r.Color
		}

		description := r.Description
		if description == "" {
			description = r.ExtendedProps.Description
		}

		title := r.Title
		if title == "" {
			title = legacyTitle
		}

		ev := model.FromRecord(model.Record{
			ID:              r.ID,
			Title:           title,
			Start:           r.Start,
			End:             r.End,
			AllDay:          r.AllDaySnake || r.AllDay,
			BackgroundColor: color,
			Description:     description,
			CategoryID:      r.CategoryID,
		})
		events = append(events, ev)
	}
	return events
}

// Convert parses a legacy blob (either a document with an "events" array
// or a bare array) and returns canonical events.
func Convert(data []byte) ([]model.Event, error) {
	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil || blob.Events == nil {
		var records []LegacyRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse legacy events: %w", err)
		}
		blob.Events = records
	}
	return ConvertRecords(blob.Events), nil
}
