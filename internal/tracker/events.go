package tracker

import "fmt"

// Event is a session lifecycle notification from the host. Every event
// triggers a rebuild of the plan from the active branch.
type Event string

const (
	EventSessionStart  Event = "session_start"
	EventSessionSwitch Event = "session_switch"
	EventSessionFork   Event = "session_fork"
	EventSessionTree   Event = "session_tree"
)

// Events returns every lifecycle event the tracker reacts to.
func Events() []Event {
	return []Event{EventSessionStart, EventSessionSwitch, EventSessionFork, EventSessionTree}
}

// ParseEvent converts a raw event name into an Event.
func ParseEvent(raw string) (Event, error) {
	e := Event(raw)
	switch e {
	case EventSessionStart, EventSessionSwitch, EventSessionFork, EventSessionTree:
		return e, nil
	default:
		return "", fmt.Errorf("unknown session event %q", raw)
	}
}
