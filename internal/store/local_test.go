package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
)

func openTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := OpenLocal(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvent(id string) model.Event {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	return model.Event{
		ID:              id,
		Title:           "Deep work",
		Start:           start,
		End:             start.Add(2 * time.Hour),
		BackgroundColor: "#f57c00",
		Description:     "no meetings",
		CategoryID:      "work",
		CreatedAt:       start,
		UpdatedAt:       start,
	}
}

func TestLocalCreateAndFetch(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	if err := s.Create(ctx, sampleEvent("a"), "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := s.FetchAll(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	got := events[0]
	want := sampleEvent("a")
	if got.Title != want.Title || got.Description != want.Description || got.CategoryID != want.CategoryID {
		t.Errorf("got %+v, want fields preserved", got)
	}
	if !got.Start.Equal(want.Start) || !got.End.Equal(want.End) {
		t.Errorf("got %v–%v, want %v–%v", got.Start, got.End, want.Start, want.End)
	}
	if got.UserID != "u1" {
		t.Errorf("userID = %q, want scoping applied", got.UserID)
	}
}

func TestLocalScopesByUser(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	if err := s.Create(ctx, sampleEvent("a"), "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, sampleEvent("b"), "u2"); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := s.FetchAll(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 1 || events[0].ID != "a" {
		t.Errorf("got %v, want only u1's event", events)
	}
}

func TestLocalUpdate(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	ev := sampleEvent("a")
	if err := s.Create(ctx, ev, "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ev.Title = "Renamed"
	ev.AllDay = true
	if err := s.Update(ctx, ev, "u1"); err != nil {
		t.Fatalf("update: %v", err)
	}

	events, err := s.FetchAll(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if events[0].Title != "Renamed" {
		t.Errorf("title = %q, want updated", events[0].Title)
	}
	if !events[0].AllDay {
		t.Error("all-day flag not persisted")
	}
}

func TestLocalDelete(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	if err := s.Create(ctx, sampleEvent("a"), "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, "a", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events, err := s.FetchAll(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestLocalFetchOrdersByStart(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	late := sampleEvent("late")
	late.Start = late.Start.Add(5 * time.Hour)
	late.End = late.Start.Add(time.Hour)

	if err := s.Create(ctx, late, "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, sampleEvent("early"), "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := s.FetchAll(ctx, "u1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if events[0].ID != "early" || events[1].ID != "late" {
		t.Errorf("order = [%s %s], want chronological", events[0].ID, events[1].ID)
	}
}

func TestLocalKVRoundTrip(t *testing.T) {
	s := openTestLocal(t)
	ctx := context.Background()

	if v, err := s.Get(ctx, "missing"); err != nil || v != "" {
		t.Errorf("get missing = (%q, %v), want empty", v, err)
	}

	if err := s.Set(ctx, "pomodoro.focusMinutes", "25"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "pomodoro.focusMinutes", "30"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, err := s.Get(ctx, "pomodoro.focusMinutes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "30" {
		t.Errorf("value = %q, want last write", v)
	}
}
