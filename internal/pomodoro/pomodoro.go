// Package pomodoro implements the focus/break interval state machine that
// runs beside the calendar. It has no dependency on calendar data; the
// caller drives it with a one-second tick.
package pomodoro

// Mode is the timer's current phase
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeFocus     Mode = "focus"
	ModeBreak     Mode = "break"
	ModeLongBreak Mode = "longBreak"
)

// Default durations in seconds
const (
	DefaultWorkDuration      = 25 * 60
	DefaultBreakDuration     = 5 * 60
	DefaultLongBreakDuration = 15 * 60
	DefaultSessionsBeforeLB  = 4
	DefaultTotalIntervals    = 12
)

// Settings are the configured durations and counts. A zero value is the
// "unset" sentinel and disables Start.
type Settings struct {
	WorkDuration            int `json:"work_duration"`
	BreakDuration           int `json:"break_duration"`
	LongBreakDuration       int `json:"long_break_duration"`
	SessionsBeforeLongBreak int `json:"sessions_before_long_break"`
	TotalIntervals          int `json:"total_intervals"`
}

// DefaultSettings returns the stock 25/5/15 configuration
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:            DefaultWorkDuration,
		BreakDuration:           DefaultBreakDuration,
		LongBreakDuration:       DefaultLongBreakDuration,
		SessionsBeforeLongBreak: DefaultSessionsBeforeLB,
		TotalIntervals:          DefaultTotalIntervals,
	}
}

// complete returns false if any field is still the zero sentinel
func (s Settings) complete() bool {
	return s.WorkDuration > 0 && s.BreakDuration > 0 && s.LongBreakDuration > 0 &&
		s.SessionsBeforeLongBreak > 0 && s.TotalIntervals > 0
}

// Patch updates a subset of settings; nil fields are left alone
type Patch struct {
	WorkDuration            *int
	BreakDuration           *int
	LongBreakDuration       *int
	SessionsBeforeLongBreak *int
	TotalIntervals          *int
}

// Notifier is told when a mode completes, so the integration point can
// raise a desktop notification or status message.
type Notifier interface {
	ModeCompleted(finished Mode, next Mode)
}

// Timer is the interval state machine. It is not safe for concurrent use;
// the owning loop serializes access.
type Timer struct {
	settings Settings

	Mode              Mode
	TimeLeft          int
	IsRunning         bool
	CompletedSessions int

	notifier Notifier
}

// NewTimer creates an idle timer with the given settings
func NewTimer(settings Settings) *Timer {
	return &Timer{
		settings: settings,
		Mode:     ModeIdle,
		TimeLeft: settings.WorkDuration,
	}
}

// SetNotifier registers the mode-completion hook
func (t *Timer) SetNotifier(n Notifier) {
	t.notifier = n
}

// Settings returns the current configuration
func (t *Timer) Settings() Settings {
	return t.settings
}

// Start begins or resumes the timer. Refused while any duration or count
// is still the zero sentinel.
func (t *Timer) Start() bool {
	if !t.settings.complete() {
		return false
	}
	if t.Done() {
		return false
	}
	if t.Mode == ModeIdle {
		t.Mode = ModeFocus
		t.TimeLeft = t.settings.WorkDuration
	}
	t.IsRunning = true
	return true
}

// Pause stops the countdown without losing position
func (t *Timer) Pause() {
	t.IsRunning = false
}

// Tick advances the timer by one second. When the countdown hits zero the
// machine switches mode, or stops entirely once every interval is done.
func (t *Timer) Tick() {
	if !t.IsRunning {
		return
	}
	if t.TimeLeft > 0 {
		t.TimeLeft--
	}
	if t.TimeLeft == 0 {
		t.switchMode()
	}
}

// switchMode leaves the finished mode for the next one. Leaving focus
// counts a completed session and picks a long break every Nth time; once
// completedSessions reaches totalIntervals the machine stops instead of
// scheduling another break.
func (t *Timer) switchMode() {
	finished := t.Mode

	if t.Mode == ModeFocus {
		t.CompletedSessions++

		if t.CompletedSessions >= t.settings.TotalIntervals {
			t.CompletedSessions = t.settings.TotalIntervals
			t.IsRunning = false
			t.notify(finished, t.Mode)
			return
		}

		if t.CompletedSessions%t.settings.SessionsBeforeLongBreak == 0 {
			t.Mode = ModeLongBreak
			t.TimeLeft = t.settings.LongBreakDuration
		} else {
			t.Mode = ModeBreak
			t.TimeLeft = t.settings.BreakDuration
		}
	} else {
		t.Mode = ModeFocus
		t.TimeLeft = t.settings.WorkDuration
	}

	t.notify(finished, t.Mode)
}

func (t *Timer) notify(finished, next Mode) {
	if t.notifier != nil {
		t.notifier.ModeCompleted(finished, next)
	}
}

// Done reports the terminal condition
func (t *Timer) Done() bool {
	return t.settings.TotalIntervals > 0 && t.CompletedSessions >= t.settings.TotalIntervals
}

// Reset returns to idle with the initial focus duration. Configured
// durations are preserved.
func (t *Timer) Reset() {
	t.IsRunning = false
	t.Mode = ModeIdle
	t.TimeLeft = t.settings.WorkDuration
	t.CompletedSessions = 0
}

// UpdateSettings applies a patch. When the patched field matches the
// active mode the remaining time is re-seeded immediately. Whether edits
// are allowed while running is the caller's concern; the machine accepts
// the mutation either way.
func (t *Timer) UpdateSettings(p Patch) {
	if p.WorkDuration != nil {
		t.settings.WorkDuration = *p.WorkDuration
		if t.Mode == ModeFocus || t.Mode == ModeIdle {
			t.TimeLeft = *p.WorkDuration
		}
	}
	if p.BreakDuration != nil {
		t.settings.BreakDuration = *p.BreakDuration
		if t.Mode == ModeBreak {
			t.TimeLeft = *p.BreakDuration
		}
	}
	if p.LongBreakDuration != nil {
		t.settings.LongBreakDuration = *p.LongBreakDuration
		if t.Mode == ModeLongBreak {
			t.TimeLeft = *p.LongBreakDuration
		}
	}
	if p.SessionsBeforeLongBreak != nil {
		t.settings.SessionsBeforeLongBreak = *p.SessionsBeforeLongBreak
	}
	if p.TotalIntervals != nil {
		t.settings.TotalIntervals = *p.TotalIntervals
	}
}

// Snapshot is the persisted in-progress state
type Snapshot struct {
	TimeLeft        int  `json:"time_left"`
	IsRunning       bool `json:"is_running"`
	Mode            Mode `json:"mode"`
	CurrentInterval int  `json:"current_interval"`
}

// Snapshot captures the resumable state
func (t *Timer) Snapshot() Snapshot {
	return Snapshot{
		TimeLeft:        t.TimeLeft,
		IsRunning:       t.IsRunning,
		Mode:            t.Mode,
		CurrentInterval: t.CompletedSessions,
	}
}

// Restore resumes from a persisted snapshot
func (t *Timer) Restore(s Snapshot) {
	if s.Mode == "" {
		return
	}
	t.Mode = s.Mode
	t.TimeLeft = s.TimeLeft
	t.IsRunning = s.IsRunning
	t.CompletedSessions = s.CurrentInterval
}
