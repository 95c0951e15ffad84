// Package store defines the event persistence capability and its two
// implementations: a local SQLite database and a cloud sync server client.
// The backend is chosen at construction time from config; callers never
// branch on which one is active.
package store

import (
	"context"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
)

// ChangeHandlers receive live updates pushed by other sessions.
type ChangeHandlers struct {
	OnInsert func(model.Event)
	OnUpdate func(model.Event)
	OnDelete func(id string)
}

// EventStore is the persistence capability for calendar events.
// All operations are scoped to a single user.
type EventStore interface {
	FetchAll(ctx context.Context, userID string) ([]model.Event, error)
	Create(ctx context.Context, ev model.Event, userID string) error
	Update(ctx context.Context, ev model.Event, userID string) error
	Delete(ctx context.Context, id, userID string) error

	// Subscribe starts delivering change notifications for rows modified by
	// any session of this user. The returned stop function tears the
	// subscription down; it must be called when the session ends.
	Subscribe(ctx context.Context, userID string, handlers ChangeHandlers) (stop func(), err error)
}

// KV is a small durable key-value bucket used for the legacy event blob
// and the pomodoro persisted keys.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
