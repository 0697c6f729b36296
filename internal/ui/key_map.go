package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings for the transfer flow. Help labels follow the
// view they appear in: picking a playlist, previewing its tracks, confirming
// the transfer, and restarting from the result screen.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	pick     key.Binding
	transfer key.Binding
	back     key.Binding
	confirm  key.Binding
	cancel   key.Binding
	restart  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		pick:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view tracks")),
		transfer: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transfer")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start transfer")),
		cancel:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new transfer")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.pick},
		{k.back, k.confirm, k.cancel},
		{k.restart, k.quit},
	}
}
