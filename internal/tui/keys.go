package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/compquiz/internal/levels"
)

type keyMap struct {
	Quit key.Binding

	Normal  key.Binding
	Timed   key.Binding
	MenuOut key.Binding

	Shorter key.Binding
	Longer  key.Binding
	Toggle  key.Binding
	Start   key.Binding
	Back    key.Binding

	Submit key.Binding
	Next   key.Binding
	Retry  key.Binding
	Switch key.Binding
	Menu   key.Binding

	Done key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Normal:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "normal mode")),
		Timed:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "timed mode")),
		MenuOut: key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),

		Shorter: key.NewBinding(key.WithKeys("left", "-"), key.WithHelp("←/-", "less time")),
		Longer:  key.NewBinding(key.WithKeys("right", "+", "="), key.WithHelp("→/+", "more time")),
		Toggle:  key.NewBinding(key.WithKeys(levelKeys("")...), key.WithHelp("1-6", "toggle level")),
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Next:   key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter/space", "next")),
		Retry:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "try again")),
		Switch: key.NewBinding(key.WithKeys(levelKeys("alt+")...), key.WithHelp("alt+1-6", "switch level")),
		Menu:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),

		Done: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "back to menu")),
	}
}

func levelKeys(prefix string) []string {
	keys := make([]string, 0, len(levels.Universe))
	for _, level := range levels.Universe {
		keys = append(keys, fmt.Sprintf("%s%d", prefix, level))
	}
	return keys
}

// levelFromKey maps "3" or "alt+3" to 3, or 0 when the key names no level.
func levelFromKey(s string) int {
	if len(s) == 0 {
		return 0
	}
	level := int(s[len(s)-1] - '0')
	if !levels.Valid(level) {
		return 0
	}
	return level
}
