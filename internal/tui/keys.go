package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	StartPause key.Binding
	Reset      key.Binding
	Duplicate  key.Binding
	Delete     key.Binding
	Up         key.Binding
	Down       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	StartPause: key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s/space", "start/pause timer")),
	Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset timer")),
	Duplicate:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "duplicate block")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete block")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartPause, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.StartPause, k.Reset},
		{k.Up, k.Down, k.Duplicate, k.Delete},
		{k.Help, k.Quit},
	}
}
