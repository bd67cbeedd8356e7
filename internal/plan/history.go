package plan

// ToolName tags the tool results that belong to plan tracking.
const ToolName = "plan_tracker"

// Record kinds and roles that carry plan tool results.
const (
	RecordKindMessage    = "message"
	RecordRoleToolResult = "toolResult"
)

// Details is the payload persisted with every plan tool result.
// A non-empty Error marks a failed operation whose Tasks must not be applied.
type Details struct {
	Action Action `json:"action"`
	Tasks  []Task `json:"tasks"`
	Error  string `json:"error,omitempty"`
}

// Record is one entry of a session branch as seen by reconstruction.
type Record struct {
	Kind     string
	Role     string
	ToolName string
	Details  *Details
}

// IsPlanResult reports whether r is a result of this tool carrying details.
func (r Record) IsPlanResult() bool {
	return r.Kind == RecordKindMessage &&
		r.Role == RecordRoleToolResult &&
		r.ToolName == ToolName &&
		r.Details != nil
}

// Reduce applies one persisted result to state. Failed results leave state
// untouched; successful ones replace it.
func Reduce(state []Task, d Details) []Task {
	if d.Error != "" {
		return state
	}
	return Clone(d.Tasks)
}

// Fold replays details in order starting from an empty plan.
func Fold(details []Details) []Task {
	state := []Task{}
	for _, d := range details {
		state = Reduce(state, d)
	}
	return state
}

// Reconstruct recomputes the plan from an ordered branch of records.
// Records that are not plan tool results are ignored.
func Reconstruct(records []Record) []Task {
	var details []Details
	for _, r := range records {
		if !r.IsPlanResult() {
			continue
		}
		details = append(details, *r.Details)
	}
	return Fold(details)
}
