package components

import (
	"fmt"
	"strings"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tui/styles"
)

// RenderWidget renders the one-line plan summary:
//
//	Tasks: ✓→○ (1/3)  Write tests
//
// An empty plan renders as "".
func RenderWidget(w plan.WidgetData) string {
	if w.Total == 0 {
		return ""
	}

	var icons strings.Builder
	for _, icon := range w.Icons {
		icons.WriteString(RenderIcon(icon))
	}

	line := fmt.Sprintf("%s %s %s",
		styles.MutedStyle.Render("Tasks:"),
		icons.String(),
		styles.MutedStyle.Render(fmt.Sprintf("(%d/%d)", w.Complete, w.Total)))
	if w.CurrentName != "" {
		line += "  " + w.CurrentName
	}
	return line
}

// RenderIcon colors a status icon by its theme role.
func RenderIcon(icon string) string {
	switch icon {
	case plan.IconComplete:
		return styles.SuccessStyle.Render(icon)
	case plan.IconInProgress:
		return styles.WarningStyle.Render(icon)
	default:
		return styles.DimStyle.Render(plan.IconPending)
	}
}
