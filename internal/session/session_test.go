package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/OverStackedLab/mytimeblock.com/internal/schedule"
	"github.com/OverStackedLab/mytimeblock.com/internal/store"
)

// fakeStore records writes and lets tests drive the change feed directly.
type fakeStore struct {
	mu       sync.Mutex
	events   []model.Event
	fetchErr error
	writeErr error

	creates  []model.Event
	updates  []model.Event
	deletes  []string
	handlers store.ChangeHandlers
	stopped  bool
}

func (f *fakeStore) FetchAll(ctx context.Context, userID string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]model.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, ev model.Event, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.creates = append(f.creates, ev)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, ev model.Event, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates = append(f.updates, ev)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeStore) Subscribe(ctx context.Context, userID string, handlers store.ChangeHandlers) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = handlers
	return func() {
		f.mu.Lock()
		f.stopped = true
		f.mu.Unlock()
	}, nil
}

func (f *fakeStore) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func timedEvent(id string, hour int) model.Event {
	start := time.Date(2024, 3, 1, hour, 0, 0, 0, time.Local)
	return model.Event{ID: id, UserID: "u1", Title: "Block", Start: start, End: start.Add(time.Hour)}
}

func newLoaded(t *testing.T, fs *fakeStore) *Session {
	t.Helper()
	s := New(fs, "u1")
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	fs := &fakeStore{fetchErr: errors.New("backend down")}
	s := New(fs, "u1")

	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected load error")
	}
	if got := s.Events(); len(got) != 0 {
		t.Errorf("got %d events, want empty collection after failed load", len(got))
	}
	if s.LoadError() == nil {
		t.Error("load error not retained")
	}
}

func TestCreateFromSelectionPersists(t *testing.T) {
	fs := &fakeStore{}
	s := newLoaded(t, fs)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	ev := s.CreateFromSelection(start, start.Add(time.Hour), schedule.ActionSelect)
	if ev == nil {
		t.Fatal("expected an event")
	}
	if ev.UserID != "u1" {
		t.Errorf("userID = %q, want session owner", ev.UserID)
	}

	s.Flush()
	if fs.createCount() != 1 {
		t.Errorf("create writes = %d, want 1", fs.createCount())
	}

	// The stored element carries the owner too, not just the returned copy.
	got := s.Events()
	if len(got) != 1 {
		t.Fatalf("collection length = %d, want 1", len(got))
	}
	if got[0].UserID != "u1" {
		t.Errorf("stored userID = %q, want session owner", got[0].UserID)
	}
}

func TestClickCreatesNothing(t *testing.T) {
	fs := &fakeStore{}
	s := newLoaded(t, fs)

	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	if ev := s.CreateFromSelection(at, at, schedule.ActionClick); ev != nil {
		t.Error("bare click must not create an event")
	}
	s.Flush()
	if fs.createCount() != 0 {
		t.Errorf("create writes = %d, want 0", fs.createCount())
	}
}

func TestMoveAppliesOptimistically(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	newStart := time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local)
	moved, ok := s.Move("a", newStart, newStart.Add(time.Hour), false)
	if !ok {
		t.Fatal("expected move to apply")
	}
	if !moved.Start.Equal(newStart) {
		t.Errorf("start = %v, want %v", moved.Start, newStart)
	}

	// Local state reflects the move before the write settles.
	if got := s.Events()[0].Start; !got.Equal(newStart) {
		t.Errorf("local start = %v, want applied immediately", got)
	}

	s.Flush()
	if fs.updateCount() != 1 {
		t.Errorf("update writes = %d, want 1", fs.updateCount())
	}
}

func TestWriteFailureKeepsLocalState(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	fs.mu.Lock()
	fs.writeErr = errors.New("network gone")
	fs.mu.Unlock()

	var mu sync.Mutex
	var reported []string
	s.OnError(func(op string, err error) {
		mu.Lock()
		reported = append(reported, op)
		mu.Unlock()
	})

	newStart := time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local)
	if _, ok := s.Move("a", newStart, newStart.Add(time.Hour), false); !ok {
		t.Fatal("expected move to apply locally")
	}
	s.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != "update" {
		t.Errorf("reported = %v, want one update failure", reported)
	}
	// The edit stands; no rollback.
	if got := s.Events()[0].Start; !got.Equal(newStart) {
		t.Errorf("local start = %v, want edit kept after failed write", got)
	}
}

func TestDuplicatePersistsCreate(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	dup, ok := s.Duplicate("a")
	if !ok {
		t.Fatal("expected duplicate to apply")
	}
	if dup.ID == "a" {
		t.Error("duplicate must get a new id")
	}
	if dup.UserID != "u1" {
		t.Errorf("userID = %q, want session owner", dup.UserID)
	}

	s.Flush()
	if fs.createCount() != 1 {
		t.Errorf("create writes = %d, want 1", fs.createCount())
	}

	got := s.Events()
	if len(got) != 2 {
		t.Fatalf("collection length = %d, want 2", len(got))
	}
	for _, ev := range got {
		if ev.UserID != "u1" {
			t.Errorf("stored userID = %q for %s, want session owner", ev.UserID, ev.ID)
		}
	}
}

func TestImportEventSkipsExisting(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	if s.ImportEvent(timedEvent("a", 10)) {
		t.Error("import of an existing id must be a no-op")
	}
	if !s.ImportEvent(timedEvent("b", 10)) {
		t.Error("import of a fresh id must apply")
	}

	s.Flush()
	if fs.createCount() != 1 {
		t.Errorf("create writes = %d, want 1", fs.createCount())
	}
}

func TestSetEventResolvesCategoryColor(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	categories := []model.Category{{ID: "work", Name: "Work", Color: "#112233"}}

	ev := timedEvent("a", 9)
	ev.CategoryID = "work"
	ev.BackgroundColor = ""
	if !s.SetEvent(ev, categories) {
		t.Fatal("expected edit to apply")
	}

	if got := s.Events()[0].BackgroundColor; got != "#112233" {
		t.Errorf("color = %q, want resolved category color", got)
	}
	s.Flush()
}

func TestClearCategory(t *testing.T) {
	a := timedEvent("a", 9)
	a.CategoryID = "work"
	b := timedEvent("b", 10)
	b.CategoryID = "work"
	c := timedEvent("c", 11)
	c.CategoryID = "home"

	fs := &fakeStore{events: []model.Event{a, b, c}}
	s := newLoaded(t, fs)

	if got := s.ClearCategory("work"); got != 2 {
		t.Errorf("affected = %d, want 2", got)
	}
	s.Flush()
	if fs.updateCount() != 2 {
		t.Errorf("update writes = %d, want one per affected event", fs.updateCount())
	}

	for _, ev := range s.Events() {
		if ev.ID != "c" && ev.CategoryID != "" {
			t.Errorf("event %s still categorized", ev.ID)
		}
	}
	if s.Events()[2].CategoryID != "home" {
		t.Error("unrelated category cleared")
	}
}

func TestDeleteEvent(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9), timedEvent("b", 10)}}
	s := newLoaded(t, fs)

	s.DeleteEvent("a")
	s.Flush()

	if len(s.Events()) != 1 {
		t.Errorf("collection length = %d, want 1", len(s.Events()))
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.deletes) != 1 || fs.deletes[0] != "a" {
		t.Errorf("deletes = %v, want [a]", fs.deletes)
	}
}

func TestLiveMergeInsertIgnoresEcho(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	if err := s.StartLiveUpdates(context.Background()); err != nil {
		t.Fatalf("start live updates: %v", err)
	}

	// An insert notification echoing an id we already hold must not grow
	// the collection.
	fs.handlers.OnInsert(timedEvent("a", 9))
	if got := len(s.Events()); got != 1 {
		t.Errorf("collection length = %d after echoed insert, want 1", got)
	}

	fs.handlers.OnInsert(timedEvent("b", 10))
	if got := len(s.Events()); got != 2 {
		t.Errorf("collection length = %d after fresh insert, want 2", got)
	}
}

func TestLiveMergeUpdateAndDelete(t *testing.T) {
	fs := &fakeStore{events: []model.Event{timedEvent("a", 9)}}
	s := newLoaded(t, fs)

	if err := s.StartLiveUpdates(context.Background()); err != nil {
		t.Fatalf("start live updates: %v", err)
	}

	changed := timedEvent("a", 9)
	changed.Title = "Renamed elsewhere"
	fs.handlers.OnUpdate(changed)
	if got := s.Events()[0].Title; got != "Renamed elsewhere" {
		t.Errorf("title = %q, want merged update", got)
	}

	// Updates for ids we do not hold are dropped, not inserted.
	fs.handlers.OnUpdate(timedEvent("ghost", 10))
	if got := len(s.Events()); got != 1 {
		t.Errorf("collection length = %d after unknown update, want 1", got)
	}

	fs.handlers.OnDelete("a")
	if got := len(s.Events()); got != 0 {
		t.Errorf("collection length = %d after delete, want 0", got)
	}
}

func TestCloseStopsSubscription(t *testing.T) {
	fs := &fakeStore{}
	s := newLoaded(t, fs)

	if err := s.StartLiveUpdates(context.Background()); err != nil {
		t.Fatalf("start live updates: %v", err)
	}
	s.Close()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if !fs.stopped {
		t.Error("close must tear down the subscription")
	}
}
