// Package schedule implements the pure event transformations behind the
// calendar's drag, resize, select and duplicate gestures. Every function
// takes the full event collection and returns the updated collection with
// replace-by-id semantics: the existing event is removed and the merged
// result appended, so ordering among other events is not significant.
package schedule

import (
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/google/uuid"
)

// SelectAction classifies a slot-selection gesture
type SelectAction string

const (
	ActionClick       SelectAction = "click"
	ActionSelect      SelectAction = "select"
	ActionDoubleClick SelectAction = "doubleClick"
)

// DuplicateOffset is how far a duplicated block is shifted forward
const DuplicateOffset = 24 * time.Hour

// replace removes the event with the given id and appends the replacement.
func replace(events []model.Event, id string, ev model.Event) []model.Event {
	out := make([]model.Event, 0, len(events)+1)
	for _, e := range events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return append(out, ev)
}

// find returns the event with the given id, if present
func find(events []model.Event, id string) (model.Event, bool) {
	for _, e := range events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// Move applies a drag-and-drop gesture. The branches run in this order:
//
//  1. timed block dropped on the all-day lane: becomes all-day, snapped to
//     local midnight with a one-day span
//  2. all-day block dropped on the all-day lane: stays all-day but re-snaps,
//     which matters when it was dragged to a different day
//  3. all-day block dropped on a timed lane: becomes a timed block of the
//     default 30-minute duration at the drop point, regardless of the prior
//     (possibly multi-day) span
//  4. timed block dropped on a timed lane: start and end translate verbatim
func Move(events []model.Event, id string, newStart, newEnd time.Time, onAllDayLane bool) ([]model.Event, model.Event, bool) {
	ev, ok := find(events, id)
	if !ok {
		return events, model.Event{}, false
	}

	start, end := newStart, newEnd
	switch {
	case !ev.AllDay && onAllDayLane:
		ev.AllDay = true
		start = model.Midnight(start)
		end = start.AddDate(0, 0, 1)
	case ev.AllDay && onAllDayLane:
		start = model.Midnight(start)
		end = start.AddDate(0, 0, 1)
	case ev.AllDay && !onAllDayLane:
		ev.AllDay = false
		end = start.Add(model.DefaultDuration)
	}

	ev.Start = start
	ev.End = end
	ev.UpdatedAt = time.Now()
	ev = clamp(ev)
	return replace(events, id, ev), ev, true
}

// Resize replaces start and end verbatim. Resizing never changes the
// all-day flag, only the duration.
func Resize(events []model.Event, id string, newStart, newEnd time.Time) ([]model.Event, model.Event, bool) {
	ev, ok := find(events, id)
	if !ok {
		return events, model.Event{}, false
	}

	ev.Start = newStart
	ev.End = newEnd
	ev.UpdatedAt = time.Now()
	ev = clamp(ev)
	return replace(events, id, ev), ev, true
}

// FromSlotSelection creates a new event from a drag-selected slot. A bare
// click creates nothing; accidental zero-duration blocks are worse than
// requiring a drag or double-click. A selection spanning at least 24 hours
// becomes an all-day block.
func FromSlotSelection(events []model.Event, start, end time.Time, action SelectAction) ([]model.Event, *model.Event) {
	if action == ActionClick {
		return events, nil
	}

	ev := model.NewEvent(model.DefaultTitle, start, end)
	ev.AllDay = end.Sub(start) >= 24*time.Hour
	ev = clamp(ev)
	return append(events, ev), &ev
}

// Duplicate clones an event under a new id, shifted forward by one day.
func Duplicate(events []model.Event, id string) ([]model.Event, model.Event, bool) {
	ev, ok := find(events, id)
	if !ok {
		return events, model.Event{}, false
	}

	dup := ev
	dup.ID = uuid.New().String()
	dup.Start = ev.Start.Add(DuplicateOffset)
	dup.End = ev.End.Add(DuplicateOffset)
	now := time.Now()
	dup.CreatedAt = now
	dup.UpdatedAt = now
	return append(events, dup), dup, true
}

// clamp keeps end >= start. The drag surface can report transient inverted
// ranges mid-gesture and rejecting them is not practical.
func clamp(ev model.Event) model.Event {
	if ev.End.Before(ev.Start) {
		ev.End = ev.Start
	}
	return ev
}
