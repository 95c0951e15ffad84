package pomodoro

import (
	"context"
	"testing"
)

func testSettings() Settings {
	return Settings{
		WorkDuration:            1500,
		BreakDuration:           300,
		LongBreakDuration:       900,
		SessionsBeforeLongBreak: 4,
		TotalIntervals:          2,
	}
}

// run ticks the timer n seconds
func run(t *Timer, n int) {
	for i := 0; i < n; i++ {
		t.Tick()
	}
}

func TestStartRefusedOnZeroSentinel(t *testing.T) {
	settings := testSettings()
	settings.WorkDuration = 0

	timer := NewTimer(settings)
	if timer.Start() {
		t.Error("start must be refused while a duration is unset")
	}
	if timer.IsRunning {
		t.Error("timer must not be running")
	}
}

func TestStartSeedsFocus(t *testing.T) {
	timer := NewTimer(testSettings())
	if timer.Mode != ModeIdle {
		t.Fatalf("mode = %s, want idle before start", timer.Mode)
	}

	if !timer.Start() {
		t.Fatal("start refused")
	}
	if timer.Mode != ModeFocus || timer.TimeLeft != 1500 || !timer.IsRunning {
		t.Errorf("got mode=%s timeLeft=%d running=%v, want focus/1500/true",
			timer.Mode, timer.TimeLeft, timer.IsRunning)
	}
}

func TestFullCycleAndTerminal(t *testing.T) {
	timer := NewTimer(testSettings())
	timer.Start()

	// One full focus + break cycle.
	run(timer, 1500)
	if timer.CompletedSessions != 1 {
		t.Fatalf("completedSessions = %d after focus, want 1", timer.CompletedSessions)
	}
	if timer.Mode != ModeBreak {
		t.Fatalf("mode = %s after focus, want break", timer.Mode)
	}

	run(timer, 300)
	if timer.Mode != ModeFocus {
		t.Fatalf("mode = %s after break, want focus", timer.Mode)
	}
	if timer.CompletedSessions != 1 {
		t.Fatalf("completedSessions = %d after break, want still 1", timer.CompletedSessions)
	}

	// Second focus completion hits totalIntervals: terminal, no break.
	run(timer, 1500)
	if timer.IsRunning {
		t.Error("timer must stop at the terminal condition")
	}
	if timer.CompletedSessions != 2 {
		t.Errorf("completedSessions = %d, want totalIntervals 2", timer.CompletedSessions)
	}
	if !timer.Done() {
		t.Error("expected terminal state")
	}
	if timer.Start() {
		t.Error("start must be refused once done")
	}
}

func TestLongBreakEveryNth(t *testing.T) {
	settings := testSettings()
	settings.TotalIntervals = 12

	timer := NewTimer(settings)
	timer.Start()

	for session := 1; session <= 4; session++ {
		run(timer, settings.WorkDuration)
		wantMode := ModeBreak
		if session == 4 {
			wantMode = ModeLongBreak
		}
		if timer.Mode != wantMode {
			t.Fatalf("session %d: mode = %s, want %s", session, timer.Mode, wantMode)
		}

		if wantMode == ModeLongBreak {
			run(timer, settings.LongBreakDuration)
		} else {
			run(timer, settings.BreakDuration)
		}
		if timer.Mode != ModeFocus {
			t.Fatalf("session %d: mode = %s after break, want focus", session, timer.Mode)
		}
	}
}

func TestPauseStopsCountdown(t *testing.T) {
	timer := NewTimer(testSettings())
	timer.Start()
	run(timer, 10)
	timer.Pause()

	left := timer.TimeLeft
	run(timer, 100)
	if timer.TimeLeft != left {
		t.Errorf("timeLeft changed while paused: %d -> %d", left, timer.TimeLeft)
	}
}

func TestResetPreservesSettings(t *testing.T) {
	timer := NewTimer(testSettings())
	timer.Start()
	run(timer, 1800)
	timer.Reset()

	if timer.Mode != ModeIdle || timer.IsRunning {
		t.Errorf("got mode=%s running=%v, want idle/false", timer.Mode, timer.IsRunning)
	}
	if timer.CompletedSessions != 0 {
		t.Errorf("completedSessions = %d, want 0", timer.CompletedSessions)
	}
	if timer.TimeLeft != 1500 {
		t.Errorf("timeLeft = %d, want initial focus duration", timer.TimeLeft)
	}
	if timer.Settings() != testSettings() {
		t.Error("reset must preserve configured durations")
	}
}

func TestUpdateSettingsRetimesActiveMode(t *testing.T) {
	timer := NewTimer(testSettings())
	timer.Start()
	timer.Pause()

	newWork := 600
	timer.UpdateSettings(Patch{WorkDuration: &newWork})
	if timer.TimeLeft != 600 {
		t.Errorf("timeLeft = %d, want re-seeded to 600 while in focus", timer.TimeLeft)
	}

	// Changing a duration for an inactive mode leaves timeLeft alone.
	newBreak := 60
	timer.UpdateSettings(Patch{BreakDuration: &newBreak})
	if timer.TimeLeft != 600 {
		t.Errorf("timeLeft = %d, want unchanged", timer.TimeLeft)
	}
	if timer.Settings().BreakDuration != 60 {
		t.Error("break duration not applied")
	}
}

type recordingNotifier struct {
	transitions [][2]Mode
}

func (r *recordingNotifier) ModeCompleted(finished, next Mode) {
	r.transitions = append(r.transitions, [2]Mode{finished, next})
}

func TestNotifierFiresOnModeCompletion(t *testing.T) {
	timer := NewTimer(testSettings())
	rec := &recordingNotifier{}
	timer.SetNotifier(rec)
	timer.Start()

	run(timer, 1500)
	if len(rec.transitions) != 1 {
		t.Fatalf("got %d notifications, want 1", len(rec.transitions))
	}
	if rec.transitions[0] != [2]Mode{ModeFocus, ModeBreak} {
		t.Errorf("got transition %v, want focus->break", rec.transitions[0])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	timer := NewTimer(testSettings())
	timer.Start()
	run(timer, 100)

	snap := timer.Snapshot()

	restored := NewTimer(testSettings())
	restored.Restore(snap)

	if restored.Mode != timer.Mode || restored.TimeLeft != timer.TimeLeft ||
		restored.IsRunning != timer.IsRunning || restored.CompletedSessions != timer.CompletedSessions {
		t.Errorf("restored %+v does not match snapshot source", restored.Snapshot())
	}
}

// memKV is an in-memory store.KV for tests
type memKV struct {
	data map[string]string
}

func (m *memKV) Get(ctx context.Context, key string) (string, error) {
	return m.data[key], nil
}

func (m *memKV) Set(ctx context.Context, key, value string) error {
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func TestStorePersistsSettingsAndSnapshot(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{}
	s := NewStore(kv)

	settings := testSettings()
	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	loaded := s.LoadSettings(ctx)
	if loaded.WorkDuration != 1500 || loaded.BreakDuration != 300 || loaded.TotalIntervals != 2 {
		t.Errorf("loaded settings %+v do not match saved", loaded)
	}
	// Keys not persisted fall back to defaults.
	if loaded.LongBreakDuration != DefaultLongBreakDuration {
		t.Errorf("long break = %d, want default", loaded.LongBreakDuration)
	}

	snap := Snapshot{TimeLeft: 42, IsRunning: true, Mode: ModeBreak, CurrentInterval: 1}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	got, ok := s.LoadSnapshot(ctx)
	if !ok || got != snap {
		t.Errorf("loaded snapshot %+v, want %+v", got, snap)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	s := NewStore(&memKV{})
	if _, ok := s.LoadSnapshot(context.Background()); ok {
		t.Error("expected no snapshot")
	}
}
