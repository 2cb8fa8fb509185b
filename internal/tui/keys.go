package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type appKeyMap struct {
	Proposals key.Binding
	NewSample key.Binding
	ToggleTab key.Binding
	Home      key.Binding
	Collect   key.Binding
	Grid      key.Binding
	Quit      key.Binding
}

func newAppKeyMap() appKeyMap {
	return appKeyMap{
		Proposals: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "proposal")),
		NewSample: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new sample")),
		ToggleTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "current/todo")),
		Home:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		Collect:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "data collection")),
		Grid:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "sample grid")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k appKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Proposals, k.NewSample, k.ToggleTab, k.Home, k.Collect, k.Grid, k.Quit}
}

type pickerKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Pick    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Pick:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick row")),
		Confirm: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select proposal")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pick, k.Confirm, k.Cancel}
}

type formKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Mount key.Binding
	Queue key.Binding
	Hide  key.Binding
}

func newFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Mount: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "mount")),
		Queue: key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "queue")),
		Hide:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Mount, k.Queue, k.Hide}
}

// renderHelp renders bindings as "key desc" pairs.
func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
