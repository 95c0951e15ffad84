package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/logger"
	"github.com/OverStackedLab/mytimeblock.com/internal/model"
)

// EventPayload is the wire shape for a single event
type EventPayload struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id,omitempty"`
	Title           string `json:"title"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	AllDay          bool   `json:"all_day"`
	BackgroundColor string `json:"background_color,omitempty"`
	Description     string `json:"description,omitempty"`
	CategoryID      string `json:"category_id,omitempty"`
}

// ChangeItem is one entry in the change feed
type ChangeItem struct {
	Event   EventPayload `json:"event"`
	Seq     int64        `json:"seq"`
	Deleted bool         `json:"deleted"`
}

// ChangesResponse is the response from the change feed endpoint
type ChangesResponse struct {
	Items []ChangeItem `json:"items"`
	Seq   int64        `json:"seq"`
}

// Remote is the sync-server-backed event store used for cloud accounts.
type Remote struct {
	serverURL  string
	token      string
	httpClient *http.Client

	pollInterval time.Duration

	mu      sync.Mutex
	lastSeq int64
	known   map[string]bool // ids seen locally, to classify insert vs update
}

// NewRemote creates a client for the sync server
func NewRemote(serverURL, token string) *Remote {
	return &Remote{
		serverURL:    serverURL,
		token:        token,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 10 * time.Second,
		known:        make(map[string]bool),
	}
}

func (r *Remote) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.serverURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("method", method), logger.F("path", path), logger.F("error", err))
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("Server error", logger.F("status", resp.StatusCode), logger.F("response", string(respBody)))
		return fmt.Errorf("server error: %s", string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// FetchAll returns every event belonging to the user
func (r *Remote) FetchAll(ctx context.Context, userID string) ([]model.Event, error) {
	var result struct {
		Events []EventPayload `json:"events"`
		Seq    int64          `json:"seq"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/v1/events", nil, &result); err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	r.mu.Lock()
	if result.Seq > r.lastSeq {
		r.lastSeq = result.Seq
	}
	events := make([]model.Event, 0, len(result.Events))
	for _, p := range result.Events {
		ev := payloadToEvent(p)
		r.known[ev.ID] = true
		events = append(events, ev)
	}
	r.mu.Unlock()

	return events, nil
}

// Create inserts a new event
func (r *Remote) Create(ctx context.Context, ev model.Event, userID string) error {
	r.mu.Lock()
	r.known[ev.ID] = true
	r.mu.Unlock()
	if err := r.do(ctx, http.MethodPost, "/api/v1/events", eventToPayload(ev), nil); err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	return nil
}

// Update replaces an event by id
func (r *Remote) Update(ctx context.Context, ev model.Event, userID string) error {
	if err := r.do(ctx, http.MethodPut, "/api/v1/events/"+ev.ID, eventToPayload(ev), nil); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

// Delete removes an event by id
func (r *Remote) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	delete(r.known, id)
	r.mu.Unlock()
	if err := r.do(ctx, http.MethodDelete, "/api/v1/events/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// Subscribe polls the change feed and dispatches insert/update/delete
// notifications until the stop function is called or ctx is cancelled.
func (r *Remote) Subscribe(ctx context.Context, userID string, handlers ChangeHandlers) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.pollChanges(ctx, handlers)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel, nil
}

func (r *Remote) pollChanges(ctx context.Context, handlers ChangeHandlers) {
	r.mu.Lock()
	since := r.lastSeq
	r.mu.Unlock()

	var result ChangesResponse
	path := fmt.Sprintf("/api/v1/events/changes?since=%d", since)
	if err := r.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		// Transient; the next poll retries from the same sequence.
		return
	}

	for _, item := range result.Items {
		ev := payloadToEvent(item.Event)

		r.mu.Lock()
		existed := r.known[ev.ID]
		if item.Deleted {
			delete(r.known, ev.ID)
		} else {
			r.known[ev.ID] = true
		}
		r.mu.Unlock()

		switch {
		case item.Deleted:
			if handlers.OnDelete != nil {
				handlers.OnDelete(ev.ID)
			}
		case existed:
			if handlers.OnUpdate != nil {
				handlers.OnUpdate(ev)
			}
		default:
			if handlers.OnInsert != nil {
				handlers.OnInsert(ev)
			}
		}
	}

	r.mu.Lock()
	if result.Seq > r.lastSeq {
		r.lastSeq = result.Seq
	}
	r.mu.Unlock()

	if len(result.Items) > 0 {
		logger.Debug("Applied remote changes", logger.F("count", len(result.Items)), logger.F("seq", result.Seq))
	}
}

func eventToPayload(e model.Event) EventPayload {
	return EventPayload{
		ID:              e.ID,
		UserID:          e.UserID,
		Title:           e.Title,
		StartTime:       e.Start.Format(time.RFC3339),
		EndTime:         e.End.Format(time.RFC3339),
		AllDay:          e.AllDay,
		BackgroundColor: e.BackgroundColor,
		Description:     e.Description,
		CategoryID:      e.CategoryID,
	}
}

func payloadToEvent(p EventPayload) model.Event {
	return model.FromRecord(model.Record{
		ID:              p.ID,
		UserID:          p.UserID,
		Title:           p.Title,
		Start:           parseFlex(p.StartTime),
		End:             parseFlex(p.EndTime),
		AllDay:          p.AllDay,
		BackgroundColor: p.BackgroundColor,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
	})
}

func parseFlex(s string) model.FlexTime {
	t, err := time.ParseInLocation(time.RFC3339, s, time.Local)
	if err != nil {
		return model.FlexTime{}
	}
	return model.FlexTime{Time: t, Valid: true}
}
