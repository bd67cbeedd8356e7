package components

import (
	"fmt"
	"strings"

	"github.com/pablasso/plantrack/internal/plan"
	"github.com/pablasso/plantrack/internal/tracker"
	"github.com/pablasso/plantrack/internal/tui/styles"
)

// RenderCall renders a tool call header such as "plan_tracker update [1] → complete".
func RenderCall(p tracker.Params) string {
	text := styles.ToolTitleStyle.Render(plan.ToolName+" ") + styles.MutedStyle.Render(p.Action)

	switch plan.Action(p.Action) {
	case plan.ActionUpdate:
		if p.Index != nil {
			text += " " + styles.AccentStyle.Render(fmt.Sprintf("[%d]", *p.Index))
			if p.Status != nil && *p.Status != "" {
				text += " → " + styles.DimStyle.Render(*p.Status)
			}
		}
	case plan.ActionInit:
		if p.Tasks != nil {
			text += " " + styles.DimStyle.Render(fmt.Sprintf("(%d tasks)", len(p.Tasks)))
		}
	}
	return text
}

// RenderResult renders the compact outcome of a tool call from its details.
func RenderResult(d plan.Details) string {
	if d.Error != "" {
		return styles.ErrorStyle.Render("Error: " + d.Error)
	}

	check := styles.SuccessStyle.Render("✓ ")
	switch d.Action {
	case plan.ActionInit:
		return check + styles.MutedStyle.Render(fmt.Sprintf("Plan initialized with %d tasks", len(d.Tasks)))
	case plan.ActionUpdate:
		c := plan.Count(d.Tasks)
		return check + styles.MutedStyle.Render(fmt.Sprintf("Updated (%d/%d complete)", c.Complete, c.Total))
	case plan.ActionStatus:
		return renderStatusList(d.Tasks)
	case plan.ActionClear:
		return check + styles.MutedStyle.Render("Plan cleared")
	default:
		return styles.DimStyle.Render("Done")
	}
}

func renderStatusList(tasks []plan.Task) string {
	if len(tasks) == 0 {
		return styles.DimStyle.Render("No plan active")
	}

	c := plan.Count(tasks)
	var b strings.Builder
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d/%d complete", c.Complete, c.Total)))
	for _, t := range tasks {
		b.WriteString("\n")
		b.WriteString(RenderIcon(t.Status.Icon()))
		b.WriteString(" ")
		b.WriteString(styles.MutedStyle.Render(t.Name))
	}
	return b.String()
}
