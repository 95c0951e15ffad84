package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/logger"
	"github.com/labstack/echo/v4"
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

// handleListEvents returns every live event for the user plus the current
// change sequence, so the client can start polling from there.
func (s *Server) handleListEvents(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.QueryContext(c.Request().Context(), `
		SELECT id, title, start_time, end_time, all_day, background_color, description, category_id
		FROM events
		WHERE user_id = $1 AND deleted = FALSE
		ORDER BY start_time`,
		userID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	events := []EventPayload{}
	for rows.Next() {
		var p EventPayload
		var start, end time.Time
		if err := rows.Scan(&p.ID, &p.Title, &start, &end, &p.AllDay,
			&p.BackgroundColor, &p.Description, &p.CategoryID); err != nil {
			c.Logger().Error("scan error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		p.StartTime = start.Format(time.RFC3339)
		p.EndTime = end.Format(time.RFC3339)
		events = append(events, p)
	}

	var seq int64
	err = s.db.QueryRowContext(c.Request().Context(),
		`SELECT COALESCE(MAX(seq), 0) FROM events WHERE user_id = $1`, userID).Scan(&seq)
	if err != nil {
		// The list is still usable; the client just starts polling from 0.
		logger.Warn("Change sequence lookup failed", logger.F("user", userID), logger.F("error", err))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
		"seq":    seq,
	})
}

// handleCreateEvent upserts an event under its client-generated id.
// Last write wins; a retried create after a lost response must not fail.
func (s *Server) handleCreateEvent(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var p EventPayload
	if err := c.Bind(&p); err != nil || p.ID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	start, end, err := parseRange(p.StartTime, p.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timestamps"})
	}

	_, err = s.db.ExecContext(c.Request().Context(), `
		INSERT INTO events (id, user_id, title, start_time, end_time, all_day,
		                    background_color, description, category_id, seq, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, nextval('event_changes_seq'), NOW())
		ON CONFLICT (user_id, id) DO UPDATE SET
			title = $3, start_time = $4, end_time = $5, all_day = $6,
			background_color = $7, description = $8, category_id = $9,
			deleted = FALSE, seq = nextval('event_changes_seq'), updated_at = NOW()`,
		p.ID, userID, p.Title, start, end, p.AllDay, p.BackgroundColor, p.Description, p.CategoryID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpdateEvent replaces an event by id
func (s *Server) handleUpdateEvent(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	var p EventPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	start, end, err := parseRange(p.StartTime, p.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid timestamps"})
	}

	res, err := s.db.ExecContext(c.Request().Context(), `
		UPDATE events SET title = $3, start_time = $4, end_time = $5, all_day = $6,
			background_color = $7, description = $8, category_id = $9,
			seq = nextval('event_changes_seq'), updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND deleted = FALSE`,
		userID, id, p.Title, start, end, p.AllDay, p.BackgroundColor, p.Description, p.CategoryID,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeleteEvent soft-deletes an event so the change feed sees it
func (s *Server) handleDeleteEvent(c echo.Context) error {
	userID := c.Get("user_id").(string)
	id := c.Param("id")

	_, err := s.db.ExecContext(c.Request().Context(), `
		UPDATE events SET deleted = TRUE, seq = nextval('event_changes_seq'), updated_at = NOW()
		WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleEventChanges returns rows changed since the given sequence
func (s *Server) handleEventChanges(c echo.Context) error {
	userID := c.Get("user_id").(string)

	since := int64(0)
	if v := c.QueryParam("since"); v != "" {
		since, _ = strconv.ParseInt(v, 10, 64)
	}

	rows, err := s.db.QueryContext(c.Request().Context(), `
		SELECT id, title, start_time, end_time, all_day, background_color,
		       description, category_id, deleted, seq
		FROM events
		WHERE user_id = $1 AND seq > $2
		ORDER BY seq ASC`,
		userID, since,
	)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	defer rows.Close()

	items := []ChangeItem{}
	maxSeq := since
	for rows.Next() {
		var item ChangeItem
		var start, end time.Time
		if err := rows.Scan(&item.Event.ID, &item.Event.Title, &start, &end,
			&item.Event.AllDay, &item.Event.BackgroundColor, &item.Event.Description,
			&item.Event.CategoryID, &item.Deleted, &item.Seq); err != nil {
			c.Logger().Error("scan error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		item.Event.StartTime = start.Format(time.RFC3339)
		item.Event.EndTime = end.Format(time.RFC3339)
		if item.Seq > maxSeq {
			maxSeq = item.Seq
		}
		items = append(items, item)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"seq":   maxSeq,
	})
}

// parseRange parses the start/end pair, clamping end to start when the
// client reports an inverted range.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		end = start
	}
	if end.Before(start) {
		end = start
	}
	return start, end, nil
}
