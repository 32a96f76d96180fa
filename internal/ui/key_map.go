package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	add       key.Binding
	remove    key.Binding
	watchlist key.Binding
	next      key.Binding
	prev      key.Binding
	trailer   key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "watch later")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		watchlist: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlist")),
		next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
		trailer:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open trailer")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.next, k.prev, k.watchlist},
		{k.add, k.remove, k.trailer},
		{k.back, k.quit},
	}
}
