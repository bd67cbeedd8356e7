package plan

import "fmt"

// Task is a single named unit of work in a plan.
// Identity is positional: two tasks may share a name.
type Task struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Status is the progress state of a task.
type Status string

// Task status constants
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Status icons shared by the status report and the widget.
const (
	IconComplete   = "✓"
	IconInProgress = "→"
	IconPending    = "○"
)

// Statuses returns every valid status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusComplete}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusComplete:
		return true
	default:
		return false
	}
}

// Icon returns the display symbol for s. Unknown values render as pending.
func (s Status) Icon() string {
	switch s {
	case StatusComplete:
		return IconComplete
	case StatusInProgress:
		return IconInProgress
	default:
		return IconPending
	}
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a raw string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q (want pending, in_progress or complete)", raw)
	}
	return s, nil
}
