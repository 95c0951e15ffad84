package cli

import (
	"context"
	"fmt"

	"github.com/OverStackedLab/mytimeblock.com/internal/config"
	"github.com/OverStackedLab/mytimeblock.com/internal/logger"
	"github.com/OverStackedLab/mytimeblock.com/internal/session"
	"github.com/OverStackedLab/mytimeblock.com/internal/store"
)

// localUserID scopes rows when no account is active
const localUserID = "local"

// openSession builds a session over the configured backend. The local
// SQLite database is always opened: it backs events in local mode and the
// pomodoro/kv bucket in both modes. cleanup closes everything.
func openSession(ctx context.Context) (*session.Session, *store.Local, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	local, err := store.OpenLocalDefault()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	var (
		events store.EventStore
		userID string
	)
	switch cfg.Backend {
	case config.BackendCloud:
		if cfg.Token == "" {
			local.Close()
			return nil, nil, nil, fmt.Errorf("cloud backend selected but not logged in, run 'timeblock auth login'")
		}
		events = store.NewRemote(cfg.ServerURL, cfg.Token)
		userID = cfg.UserID
	default:
		events = local
		userID = localUserID
	}

	sess := session.New(events, userID)
	if err := sess.Load(ctx); err != nil {
		// Non-fatal: the calendar starts empty and the error is logged.
		logger.Warn("Initial fetch failed", logger.F("backend", cfg.Backend), logger.F("error", err))
	}

	cleanup := func() {
		sess.Close()
		_ = local.Close()
	}
	return sess, local, cleanup, nil
}
