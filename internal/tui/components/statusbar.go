package components

import (
	"strings"

	"github.com/pablasso/plantrack/internal/tui/styles"
)

// KeyHint is one entry of the help bar, rendered as "key desc".
type KeyHint struct {
	Key  string
	Desc string
}

func (h KeyHint) String() string {
	return h.Key + " " + h.Desc
}

// StatusBar renders a bottom help bar with key hints and an optional
// right-aligned note such as the session name.
type StatusBar struct {
	Hints []KeyHint
}

// NewStatusBar creates a StatusBar with the given hints.
func NewStatusBar(hints ...KeyHint) StatusBar {
	return StatusBar{Hints: hints}
}

// Render returns the bar for the given width. Hints are joined with " • ".
func (s StatusBar) Render(width int, note string) string {
	parts := make([]string, len(s.Hints))
	for i, h := range s.Hints {
		parts[i] = h.String()
	}
	content := strings.Join(parts, " • ")

	if note != "" {
		gap := width - len([]rune(content)) - len([]rune(note))
		if gap < 1 {
			gap = 1
		}
		content += strings.Repeat(" ", gap) + note
	}

	return styles.StatusBarStyle.Width(width).Render(content)
}
