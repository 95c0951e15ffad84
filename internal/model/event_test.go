package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromRecordDefaults(t *testing.T) {
	before := time.Now()
	ev := FromRecord(Record{Title: "Standup"})
	after := time.Now()

	if ev.ID == "" {
		t.Error("expected a generated id")
	}
	// Missing timestamps substitute "now" rather than failing.
	if ev.Start.Before(before) || ev.Start.After(after) {
		t.Errorf("start = %v, want roughly now", ev.Start)
	}
	if ev.End.Before(ev.Start) {
		t.Error("end must not precede start")
	}
	if ev.BackgroundColor != DefaultColor {
		t.Errorf("color = %q, want default %q", ev.BackgroundColor, DefaultColor)
	}
}

func TestFromRecordUntitled(t *testing.T) {
	ev := FromRecord(Record{})
	if ev.Title != DefaultTitle {
		t.Errorf("title = %q, want %q", ev.Title, DefaultTitle)
	}
}

func TestFlexTimeDecodings(t *testing.T) {
	ref := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		json string
	}{
		{"rfc3339", `"` + ref.Format(time.RFC3339) + `"`},
		{"unix seconds", `1704099600`},
		{"seconds object", `{"seconds": 1704099600, "nanoseconds": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexTime
			if err := json.Unmarshal([]byte(tt.json), &f); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !f.Valid {
				t.Fatal("expected a valid timestamp")
			}
			if tt.name == "rfc3339" && !f.Time.Equal(ref) {
				t.Errorf("got %v, want %v", f.Time, ref)
			}
		})
	}
}

func TestFlexTimeInvalid(t *testing.T) {
	for _, raw := range []string{`null`, `""`, `"garbage"`, `{}`} {
		var f FlexTime
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			t.Errorf("unmarshal %s: unexpected error %v", raw, err)
		}
		if f.Valid {
			t.Errorf("unmarshal %s: expected invalid", raw)
		}
	}
}

func TestNormalizeClampsEnd(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	ev := Normalize(Event{ID: "a", Start: start, End: start.Add(-time.Hour)})
	if !ev.End.Equal(start) {
		t.Errorf("end = %v, want clamped to start %v", ev.End, start)
	}
}

func TestNormalizeAllDaySnapsToMidnight(t *testing.T) {
	ev := Normalize(Event{
		ID:     "a",
		AllDay: true,
		Start:  time.Date(2024, 1, 1, 9, 30, 0, 0, time.Local),
		End:    time.Date(2024, 1, 1, 11, 0, 0, 0, time.Local),
	})

	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	if !ev.Start.Equal(wantStart) {
		t.Errorf("start = %v, want midnight", ev.Start)
	}
	if !ev.End.Equal(wantStart.AddDate(0, 0, 1)) {
		t.Errorf("end = %v, want next midnight", ev.End)
	}
}

func TestNormalizeAllDayKeepsMultiDaySpan(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 4, 0, 0, 0, 0, time.Local)
	ev := Normalize(Event{ID: "a", AllDay: true, Start: start, End: end})
	if !ev.Start.Equal(start) || !ev.End.Equal(end) {
		t.Errorf("got %v–%v, want span preserved", ev.Start, ev.End)
	}
}

func TestColorFor(t *testing.T) {
	categories := []Category{
		{ID: "work", Name: "Work", Color: "#112233"},
		{ID: "home", Name: "Home", Color: "#445566"},
	}

	if got := ColorFor(categories, "home"); got != "#445566" {
		t.Errorf("got %q, want category color", got)
	}
	if got := ColorFor(categories, "unknown"); got != DefaultColor {
		t.Errorf("got %q, want default for unknown category", got)
	}
}
