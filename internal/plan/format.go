package plan

import (
	"fmt"
	"strings"
)

// NoPlanText is the status report for an empty plan.
const NoPlanText = "No plan active."

// WidgetData is the compact projection of a plan shown in the live widget.
type WidgetData struct {
	Icons       []string `json:"icons"`
	Complete    int      `json:"complete"`
	Total       int      `json:"total"`
	CurrentName string   `json:"currentName"`
}

// FormatStatus renders the multi-line status report for tasks.
func FormatStatus(tasks []Task) string {
	if len(tasks) == 0 {
		return NoPlanText
	}

	c := Count(tasks)
	lines := make([]string, 0, len(tasks)+2)
	lines = append(lines, fmt.Sprintf("Plan: %d/%d complete (%d in progress, %d pending)",
		c.Complete, c.Total, c.InProgress, c.Pending))
	lines = append(lines, "")
	for i, t := range tasks {
		lines = append(lines, fmt.Sprintf("  %s [%d] %s", t.Status.Icon(), i, t.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatWidget projects tasks into widget data. The current name is the
// first in_progress task, falling back to the first pending one.
func FormatWidget(tasks []Task) WidgetData {
	if len(tasks) == 0 {
		return WidgetData{Icons: []string{}}
	}

	icons := make([]string, len(tasks))
	for i, t := range tasks {
		icons[i] = t.Status.Icon()
	}

	var currentName string
	if idx := Current(tasks); idx >= 0 {
		currentName = tasks[idx].Name
	}

	return WidgetData{
		Icons:       icons,
		Complete:    Count(tasks).Complete,
		Total:       len(tasks),
		CurrentName: currentName,
	}
}
