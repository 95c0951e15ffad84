// Package todo implements the checklist kept beside the calendar. Unlike
// events, todos have no schedule or live channel: the whole per-user list
// is read and written wholesale as one durable document, the way the
// legacy backend stored it.
package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/store"
	"github.com/google/uuid"
)

// Todo is one checklist entry
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// List owns one user's todos in a KV bucket. Every mutation is a
// read-modify-write of the whole document.
type List struct {
	kv     store.KV
	userID string
}

// NewList scopes a todo list to one user
func NewList(kv store.KV, userID string) *List {
	return &List{kv: kv, userID: userID}
}

func (l *List) key() string {
	return "todos." + l.userID
}

// Load reads the user's todos; a missing document is an empty list
func (l *List) Load(ctx context.Context) ([]Todo, error) {
	raw, err := l.kv.Get(ctx, l.key())
	if err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var todos []Todo
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		return nil, fmt.Errorf("failed to parse todos: %w", err)
	}
	return todos, nil
}

func (l *List) save(ctx context.Context, todos []Todo) error {
	data, err := json.Marshal(todos)
	if err != nil {
		return err
	}
	if err := l.kv.Set(ctx, l.key(), string(data)); err != nil {
		return fmt.Errorf("failed to write todos: %w", err)
	}
	return nil
}

// Add appends a new open todo and returns it
func (l *List) Add(ctx context.Context, text string) (Todo, error) {
	todos, err := l.Load(ctx)
	if err != nil {
		return Todo{}, err
	}

	t := Todo{
		ID:        uuid.New().String(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	todos = append(todos, t)
	if err := l.save(ctx, todos); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// Toggle flips the completed flag of the todo with the given id
func (l *List) Toggle(ctx context.Context, id string) (Todo, error) {
	return l.mutate(ctx, id, func(t *Todo) {
		t.Completed = !t.Completed
	})
}

// Edit replaces the text of the todo with the given id
func (l *List) Edit(ctx context.Context, id, text string) (Todo, error) {
	return l.mutate(ctx, id, func(t *Todo) {
		t.Text = text
	})
}

func (l *List) mutate(ctx context.Context, id string, fn func(*Todo)) (Todo, error) {
	todos, err := l.Load(ctx)
	if err != nil {
		return Todo{}, err
	}

	for i := range todos {
		if todos[i].ID == id {
			fn(&todos[i])
			if err := l.save(ctx, todos); err != nil {
				return Todo{}, err
			}
			return todos[i], nil
		}
	}
	return Todo{}, fmt.Errorf("no todo with id %s", id)
}

// Delete removes the todo with the given id
func (l *List) Delete(ctx context.Context, id string) error {
	todos, err := l.Load(ctx)
	if err != nil {
		return err
	}

	filtered := todos[:0]
	for _, t := range todos {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == len(todos) {
		return fmt.Errorf("no todo with id %s", id)
	}
	return l.save(ctx, filtered)
}
