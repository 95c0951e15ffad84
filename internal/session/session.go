// Package session holds the canonical event collection for one signed-in
// user. It is the single writer over that collection: gesture results from
// the schedule package and live updates from the store's change feed both
// funnel through it, applying the same replace-by-id discipline.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/logger"
	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/OverStackedLab/mytimeblock.com/internal/schedule"
	"github.com/OverStackedLab/mytimeblock.com/internal/store"
)

// ErrorHandler receives non-fatal persistence failures. The local state is
// never rolled back: the user's edit stands as their authoritative intent
// and the next successful sync re-attempts from current local state.
type ErrorHandler func(op string, err error)

// Session is a dependency-injected state container for one user's events.
// Multiple independent sessions can coexist in one process.
type Session struct {
	userID string
	store  store.EventStore

	mu      sync.Mutex
	events  []model.Event
	loaded  bool
	loadErr error

	stopLive func()
	onError  ErrorHandler

	writes sync.WaitGroup
}

// New creates a session backed by the given store
func New(st store.EventStore, userID string) *Session {
	return &Session{
		userID: userID,
		store:  st,
	}
}

// OnError registers a handler for non-fatal persistence failures
func (s *Session) OnError(h ErrorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = h
}

// Load fetches the user's events from the store. On failure the session
// starts empty and the error is reported; the calendar renders empty
// rather than crashing.
func (s *Session) Load(ctx context.Context) error {
	events, err := s.store.FetchAll(ctx, s.userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.loadErr = err
	if err != nil {
		logger.Error("Failed to fetch events", logger.F("user", s.userID), logger.F("error", err))
		s.events = nil
		return err
	}
	s.events = events
	logger.Info("Loaded events", logger.F("user", s.userID), logger.F("count", len(events)))
	return nil
}

// LoadError returns the error from the initial fetch, if any
func (s *Session) LoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Events returns a snapshot of the current collection
func (s *Session) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Move applies a drag gesture: optimistic local apply, then remote write
func (s *Session) Move(id string, newStart, newEnd time.Time, onAllDayLane bool) (model.Event, bool) {
	s.mu.Lock()
	updated, ev, ok := schedule.Move(s.events, id, newStart, newEnd, onAllDayLane)
	if ok {
		s.events = updated
	}
	s.mu.Unlock()

	if ok {
		s.persist("update", ev)
	}
	return ev, ok
}

// Resize applies a resize gesture
func (s *Session) Resize(id string, newStart, newEnd time.Time) (model.Event, bool) {
	s.mu.Lock()
	updated, ev, ok := schedule.Resize(s.events, id, newStart, newEnd)
	if ok {
		s.events = updated
	}
	s.mu.Unlock()

	if ok {
		s.persist("update", ev)
	}
	return ev, ok
}

// CreateFromSelection creates an event from a slot-selection gesture.
// Returns nil for a bare click.
func (s *Session) CreateFromSelection(start, end time.Time, action schedule.SelectAction) *model.Event {
	s.mu.Lock()
	updated, ev := schedule.FromSlotSelection(s.events, start, end, action)
	if ev != nil {
		// Stamp ownership on the stored element, not just the returned copy.
		ev.UserID = s.userID
		updated[len(updated)-1] = *ev
		s.events = updated
	}
	s.mu.Unlock()

	if ev != nil {
		s.persist("create", *ev)
	}
	return ev
}

// Duplicate clones an event under a new id
func (s *Session) Duplicate(id string) (model.Event, bool) {
	s.mu.Lock()
	updated, dup, ok := schedule.Duplicate(s.events, id)
	if ok {
		dup.UserID = s.userID
		updated[len(updated)-1] = dup
		s.events = updated
	}
	s.mu.Unlock()

	if ok {
		s.persist("create", dup)
	}
	return dup, ok
}

// ImportEvent inserts a fully-formed event (migration path). A no-op when
// the id is already present.
func (s *Session) ImportEvent(ev model.Event) bool {
	ev = model.Normalize(ev)
	ev.UserID = s.userID

	s.mu.Lock()
	for _, e := range s.events {
		if e.ID == ev.ID {
			s.mu.Unlock()
			return false
		}
	}
	s.events = append(s.events, ev)
	s.mu.Unlock()

	s.persist("create", ev)
	return true
}

// SetEvent applies a form edit, resolving the category color when a
// category is assigned without an explicit color.
func (s *Session) SetEvent(ev model.Event, categories []model.Category) bool {
	if ev.CategoryID != "" && ev.BackgroundColor == "" {
		ev.BackgroundColor = model.ColorFor(categories, ev.CategoryID)
	}
	ev = model.Normalize(ev)
	ev.UpdatedAt = time.Now()

	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == ev.ID {
			s.events[i] = ev
			found = true
			break
		}
	}
	s.mu.Unlock()

	if found {
		s.persist("update", ev)
	}
	return found
}

// DeleteEvent removes an event by id
func (s *Session) DeleteEvent(id string) {
	s.mu.Lock()
	filtered := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	s.events = filtered
	s.mu.Unlock()

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := s.store.Delete(context.Background(), id, s.userID); err != nil {
			s.reportError("delete", err)
		}
	}()
}

// ClearCategory clears the category reference from every event pointing at
// the deleted category, issuing one update per affected event.
func (s *Session) ClearCategory(categoryID string) int {
	s.mu.Lock()
	var affected []model.Event
	for i := range s.events {
		if s.events[i].CategoryID == categoryID {
			s.events[i].CategoryID = ""
			s.events[i].UpdatedAt = time.Now()
			affected = append(affected, s.events[i])
		}
	}
	s.mu.Unlock()

	for _, ev := range affected {
		s.persist("update", ev)
	}
	logger.Info("Cleared category from events", logger.F("category", categoryID), logger.F("count", len(affected)))
	return len(affected)
}

// persist dispatches a fire-and-forget remote write. The caller's local
// apply has already happened; failures are surfaced, never rolled back.
func (s *Session) persist(op string, ev model.Event) {
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		var err error
		switch op {
		case "create":
			err = s.store.Create(context.Background(), ev, s.userID)
		default:
			err = s.store.Update(context.Background(), ev, s.userID)
		}
		if err != nil {
			s.reportError(op, err)
		}
	}()
}

func (s *Session) reportError(op string, err error) {
	logger.Error("Event write failed", logger.F("op", op), logger.F("error", err))
	s.mu.Lock()
	h := s.onError
	s.mu.Unlock()
	if h != nil {
		h(op, err)
	}
}

// Flush waits for in-flight writes to settle
func (s *Session) Flush() {
	s.writes.Wait()
}

// StartLiveUpdates subscribes to the store's change feed and merges
// notifications into the collection by id.
func (s *Session) StartLiveUpdates(ctx context.Context) error {
	stop, err := s.store.Subscribe(ctx, s.userID, store.ChangeHandlers{
		OnInsert: s.mergeInsert,
		OnUpdate: s.mergeUpdate,
		OnDelete: s.mergeDelete,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.stopLive = stop
	s.mu.Unlock()
	return nil
}

// mergeInsert adds an event from another session. A no-op when the id is
// already present: the echo of a create this session just issued must not
// duplicate the event.
func (s *Session) mergeInsert(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		if e.ID == ev.ID {
			return
		}
	}
	s.events = append(s.events, ev)
}

// mergeUpdate replaces by id; unknown ids are ignored
func (s *Session) mergeUpdate(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == ev.ID {
			s.events[i] = ev
			return
		}
	}
}

// mergeDelete filters out by id
func (s *Session) mergeDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.events[:0]
	for _, e := range s.events {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	s.events = filtered
}

// Close tears down the live subscription and waits for pending writes
func (s *Session) Close() {
	s.mu.Lock()
	stop := s.stopLive
	s.stopLive = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	s.writes.Wait()
}
