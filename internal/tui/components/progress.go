package components

import (
	"fmt"
	"strings"

	"github.com/pablasso/plantrack/internal/plan"
)

const (
	filledChar  = "■"
	partialChar = "▣"
	emptyChar   = "□"
)

// Progress renders plan progress like: ■■■▣▣□□□ 3/8 37%
// Complete tasks fill the bar first, then tasks in progress.
type Progress struct {
	Counts plan.Counts
	Width  int // character width of the bar portion
}

// NewProgress creates a Progress for tasks.
func NewProgress(tasks []plan.Task, width int) Progress {
	return Progress{
		Counts: plan.Count(tasks),
		Width:  width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	total := p.Counts.Total
	if total <= 0 || p.Width <= 0 {
		return ""
	}

	complete := clamp(p.Counts.Complete, 0, total)
	active := clamp(p.Counts.InProgress, 0, total-complete)

	filled := (complete * p.Width) / total
	partial := ((complete+active)*p.Width)/total - filled
	empty := p.Width - filled - partial

	bar := strings.Repeat(filledChar, filled) +
		strings.Repeat(partialChar, partial) +
		strings.Repeat(emptyChar, empty)

	return fmt.Sprintf("%s %d/%d %d%%", bar, complete, total, (complete*100)/total)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
