package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the progress display.
type KeyMap struct {
	Details key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Details: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "all steps"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "cancel run"),
		),
	}
}

// HelpText returns a formatted help string.
func (k KeyMap) HelpText() string {
	return "d all steps • q cancel run"
}
