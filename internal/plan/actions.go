package plan

import "fmt"

// Action identifies one of the plan operations.
type Action string

const (
	ActionInit   Action = "init"
	ActionUpdate Action = "update"
	ActionStatus Action = "status"
	ActionClear  Action = "clear"
)

// Actions returns every recognized action.
func Actions() []Action {
	return []Action{ActionInit, ActionUpdate, ActionStatus, ActionClear}
}

// Valid reports whether a is a recognized action.
func (a Action) Valid() bool {
	switch a {
	case ActionInit, ActionUpdate, ActionStatus, ActionClear:
		return true
	default:
		return false
	}
}

// ParseAction converts a raw string into an Action.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", raw)
	}
	return a, nil
}

// Error tags returned in Result.Error.
const (
	ErrTagTasksRequired       = "tasks required"
	ErrTagIndexStatusRequired = "index and status required"
	ErrTagNoPlanActive        = "no plan active"
	ErrTagUnknownAction       = "unknown action"
)

const (
	outOfRangeTagFormat     = "index %d out of range"
	outOfRangeTextFormat    = "Error: index %d out of range (0-%d)"
	textTasksRequired       = "Error: tasks array required for init"
	textIndexStatusRequired = "Error: index and status required for update"
	textNoPlanActive        = "Error: no plan active. Use init first."
	textPlanCleared         = "Plan cleared (%d tasks removed)."
	textNoPlanWasActive     = "No plan was active."
	textPlanInitialized     = "Plan initialized with %d tasks.\n%s"
	textTaskUpdated         = "Task %d \"%s\" → %s\n%s"
)

// OutOfRangeTag returns the error tag for an index outside the plan.
func OutOfRangeTag(index int) string {
	return fmt.Sprintf(outOfRangeTagFormat, index)
}

// Result is the outcome of a plan operation. Tasks is always a fresh slice.
// An empty Error means the operation succeeded.
type Result struct {
	Text  string
	Tasks []Task
	Error string
}

// Failed reports whether the result carries an error tag.
func (r Result) Failed() bool {
	return r.Error != ""
}

// HandleInit builds a new all-pending plan from names.
// A nil or empty names slice is an error.
func HandleInit(names []string) Result {
	if len(names) == 0 {
		return Result{
			Text:  textTasksRequired,
			Tasks: []Task{},
			Error: ErrTagTasksRequired,
		}
	}

	tasks := make([]Task, len(names))
	for i, name := range names {
		tasks[i] = Task{Name: name, Status: StatusPending}
	}
	return Result{
		Text:  fmt.Sprintf(textPlanInitialized, len(tasks), FormatStatus(tasks)),
		Tasks: tasks,
	}
}

// HandleUpdate sets the status of the task at index. A nil index or status
// means the argument was not supplied; index 0 is a valid position.
func HandleUpdate(tasks []Task, index *int, status *Status) Result {
	if index == nil || status == nil {
		return Result{
			Text:  textIndexStatusRequired,
			Tasks: Clone(tasks),
			Error: ErrTagIndexStatusRequired,
		}
	}
	if len(tasks) == 0 {
		return Result{
			Text:  textNoPlanActive,
			Tasks: []Task{},
			Error: ErrTagNoPlanActive,
		}
	}

	i := *index
	if i < 0 || i >= len(tasks) {
		return Result{
			Text:  fmt.Sprintf(outOfRangeTextFormat, i, len(tasks)-1),
			Tasks: Clone(tasks),
			Error: OutOfRangeTag(i),
		}
	}

	updated := Clone(tasks)
	updated[i].Status = *status
	return Result{
		Text:  fmt.Sprintf(textTaskUpdated, i, updated[i].Name, *status, FormatStatus(updated)),
		Tasks: updated,
	}
}

// HandleStatus reports the plan without changing it.
func HandleStatus(tasks []Task) Result {
	return Result{
		Text:  FormatStatus(tasks),
		Tasks: Clone(tasks),
	}
}

// HandleClear drops the plan.
func HandleClear(tasks []Task) Result {
	text := textNoPlanWasActive
	if n := len(tasks); n > 0 {
		text = fmt.Sprintf(textPlanCleared, n)
	}
	return Result{
		Text:  text,
		Tasks: []Task{},
	}
}
