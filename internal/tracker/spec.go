package tracker

import (
	"encoding/json"

	"github.com/pablasso/plantrack/internal/plan"
)

// Spec describes the plan_tracker tool to a host: name, label, description
// and the JSON schema of its parameters.
type Spec struct{}

func (Spec) Name() string {
	return plan.ToolName
}

func (Spec) Label() string {
	return "Plan Tracker"
}

func (Spec) Description() string {
	return "Track implementation plan progress. Actions: init (set task list), update (change task status), status (show current state), clear (remove plan)."
}

func (Spec) Parameters() map[string]interface{} {
	actions := make([]string, 0, len(plan.Actions()))
	for _, a := range plan.Actions() {
		actions = append(actions, string(a))
	}
	statuses := make([]string, 0, len(plan.Statuses()))
	for _, s := range plan.Statuses() {
		statuses = append(statuses, string(s))
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"description": "Action to perform",
				"enum":        actions,
			},
			"tasks": map[string]interface{}{
				"type":        "array",
				"description": "Task names (for init)",
				"items":       map[string]interface{}{"type": "string"},
			},
			"index": map[string]interface{}{
				"type":        "integer",
				"minimum":     0,
				"description": "Task index, 0-based (for update)",
			},
			"status": map[string]interface{}{
				"type":        "string",
				"description": "New status (for update)",
				"enum":        statuses,
			},
		},
		"required": []string{"action"},
	}
}

// MarshalJSON encodes the tool definition in the shape hosts register it.
func (s Spec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string                 `json:"name"`
		Label       string                 `json:"label"`
		Description string                 `json:"description"`
		Parameters  map[string]interface{} `json:"parameters"`
	}{
		Name:        s.Name(),
		Label:       s.Label(),
		Description: s.Description(),
		Parameters:  s.Parameters(),
	})
}
