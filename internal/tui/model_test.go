package tui

import (
	"testing"

	"github.com/OverStackedLab/mytimeblock.com/internal/pomodoro"
)

func TestNotifyRecorderTakeClears(t *testing.T) {
	r := &notifyRecorder{}
	r.set("sync update failed (kept locally)")

	if got := r.take(); got == "" {
		t.Fatal("expected the pending notice")
	}
	if got := r.take(); got != "" {
		t.Errorf("second take = %q, want notice consumed", got)
	}
}

func TestNotifyRecorderModeMessages(t *testing.T) {
	r := &notifyRecorder{}

	r.ModeCompleted(pomodoro.ModeFocus, pomodoro.ModeBreak)
	if got := r.take(); got != "focus finished, time for break" {
		t.Errorf("got %q, want transition notice", got)
	}

	// The terminal condition reports the same mode twice.
	r.ModeCompleted(pomodoro.ModeFocus, pomodoro.ModeFocus)
	if got := r.take(); got != "All intervals complete!" {
		t.Errorf("got %q, want terminal notice", got)
	}
}
