package pomodoro

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/OverStackedLab/mytimeblock.com/internal/store"
)

// Durable keys. Durations are stored as minutes, matching what the
// settings form edits; the snapshot key keeps an in-progress session
// resumable across restarts.
const (
	keyFocusMinutes   = "pomodoro.focusMinutes"
	keyBreakMinutes   = "pomodoro.breakMinutes"
	keyTotalIntervals = "pomodoro.totalIntervals"
	keySnapshot       = "pomodoro.timer"
)

// Store persists pomodoro settings and the timer snapshot in a KV bucket
type Store struct {
	kv store.KV
}

// NewStore wraps a KV bucket
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// LoadSettings reads persisted settings, falling back to defaults for
// anything unset or unparseable.
func (s *Store) LoadSettings(ctx context.Context) Settings {
	settings := DefaultSettings()

	if v, err := s.kv.Get(ctx, keyFocusMinutes); err == nil && v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			settings.WorkDuration = minutes * 60
		}
	}
	if v, err := s.kv.Get(ctx, keyBreakMinutes); err == nil && v != "" {
		if minutes, err := strconv.Atoi(v); err == nil {
			settings.BreakDuration = minutes * 60
		}
	}
	if v, err := s.kv.Get(ctx, keyTotalIntervals); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.TotalIntervals = n
		}
	}

	return settings
}

// SaveSettings writes the duration and count keys
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	if err := s.kv.Set(ctx, keyFocusMinutes, strconv.Itoa(settings.WorkDuration/60)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, keyBreakMinutes, strconv.Itoa(settings.BreakDuration/60)); err != nil {
		return err
	}
	return s.kv.Set(ctx, keyTotalIntervals, strconv.Itoa(settings.TotalIntervals))
}

// LoadSnapshot reads the resumable timer state; ok is false when none is
// stored or it cannot be parsed.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, bool) {
	v, err := s.kv.Get(ctx, keySnapshot)
	if err != nil || v == "" {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(v), &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}

// SaveSnapshot writes the resumable timer state
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, keySnapshot, string(data))
}
