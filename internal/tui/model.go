// Package tui renders the pomodoro timer and the day's agenda in the
// terminal. The one-second bubbletea tick is the timer's tick source.
package tui

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/OverStackedLab/mytimeblock.com/internal/pomodoro"
	"github.com/OverStackedLab/mytimeblock.com/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tickMsg time.Time

// notifyRecorder collects timer and sync notices for the status bar. It is
// shared by pointer so it survives bubbletea's model copies.
type notifyRecorder struct {
	mu  sync.Mutex
	msg string
}

// ModeCompleted implements pomodoro.Notifier
func (r *notifyRecorder) ModeCompleted(finished, next pomodoro.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if next == finished {
		r.msg = "All intervals complete!"
		return
	}
	r.msg = fmt.Sprintf("%s finished, time for %s", finished, next)
}

// take returns the pending notice and clears it, so a one-shot message
// does not stick to the status bar.
func (r *notifyRecorder) take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := r.msg
	r.msg = ""
	return msg
}

func (r *notifyRecorder) set(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msg = msg
}

// Model is the bubbletea application model
type Model struct {
	sess      *session.Session
	timer     *pomodoro.Timer
	pomoStore *pomodoro.Store
	notices   *notifyRecorder

	cursor   int
	help     help.Model
	showHelp bool
	width    int
}

// NewModel creates the TUI model. The timer resumes from its persisted
// snapshot when one exists.
func NewModel(sess *session.Session, pomoStore *pomodoro.Store) Model {
	ctx := context.Background()
	timer := pomodoro.NewTimer(pomoStore.LoadSettings(ctx))
	if snap, ok := pomoStore.LoadSnapshot(ctx); ok {
		timer.Restore(snap)
	}

	notices := &notifyRecorder{}
	timer.SetNotifier(notices)
	sess.OnError(func(op string, err error) {
		notices.set(fmt.Sprintf("sync %s failed (kept locally)", op))
	})

	return Model{
		sess:      sess,
		timer:     timer,
		pomoStore: pomoStore,
		notices:   notices,
		help:      help.New(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.timer.Tick()
		_ = m.pomoStore.SaveSnapshot(context.Background(), m.timer.Snapshot())
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	events := m.todayEvents()

	switch {
	case key.Matches(msg, keys.Quit):
		m.sess.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, keys.StartPause):
		if m.timer.IsRunning {
			m.timer.Pause()
		} else if !m.timer.Start() {
			m.notices.set("configure durations before starting")
		}

	case key.Matches(msg, keys.Reset):
		m.timer.Reset()
		m.notices.set("")

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(events)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Duplicate):
		if m.cursor < len(events) {
			m.sess.Duplicate(events[m.cursor].ID)
		}

	case key.Matches(msg, keys.Delete):
		if m.cursor < len(events) {
			m.sess.DeleteEvent(events[m.cursor].ID)
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}

	return m, nil
}

// todayEvents returns the blocks overlapping today, sorted by start
func (m Model) todayEvents() []model.Event {
	dayStart := model.Midnight(time.Now())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []model.Event
	for _, e := range m.sess.Events() {
		if e.Start.Before(dayEnd) && e.End.After(dayStart) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// View implements tea.Model
func (m Model) View() string {
	header := HeaderStyle.Render("mytimeblock")

	timer := m.timerView()
	agenda := m.agendaView()

	status := m.notices.take()
	if status == "" {
		status = "? for help"
	}
	statusBar := StatusBarStyle.Render(status)

	body := lipgloss.JoinVertical(lipgloss.Left, header, timer, agenda, statusBar)
	if m.showHelp {
		body = lipgloss.JoinVertical(lipgloss.Left, body, HelpStyle.Render(m.help.FullHelpView(keys.FullHelp())))
	}
	return body
}

func (m Model) timerView() string {
	minutes := m.timer.TimeLeft / 60
	seconds := m.timer.TimeLeft % 60

	state := "paused"
	if m.timer.IsRunning {
		state = "running"
	}
	if m.timer.Mode == pomodoro.ModeIdle {
		state = "idle"
	}

	line := fmt.Sprintf("%s  %02d:%02d  [%s]  %d/%d",
		ModeStyle(string(m.timer.Mode)).Render(string(m.timer.Mode)),
		minutes, seconds, state,
		m.timer.CompletedSessions, m.timer.Settings().TotalIntervals)

	return TimerStyle.Render(line)
}

func (m Model) agendaView() string {
	events := m.todayEvents()
	if len(events) == 0 {
		return AgendaStyle.Render(HelpStyle.Render("no blocks scheduled today"))
	}

	var lines []string
	for i, e := range events {
		var when string
		if e.AllDay {
			when = AllDayStyle.Render("all day")
		} else {
			when = fmt.Sprintf("%s–%s", e.Start.Format("15:04"), e.End.Format("15:04"))
		}
		line := fmt.Sprintf("%s  %s", when, e.Title)

		if i == m.cursor {
			lines = append(lines, EventSelectedStyle.Render(line))
		} else {
			lines = append(lines, EventItemStyle.Render(line))
		}
	}
	return AgendaStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
