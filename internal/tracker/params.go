package tracker

import (
	"fmt"

	"github.com/pablasso/plantrack/internal/plan"
)

// Params are the raw arguments of a plan_tracker tool call.
// Pointer fields distinguish an absent argument from its zero value.
type Params struct {
	Action string   `json:"action"`
	Tasks  []string `json:"tasks,omitempty"`
	Index  *int     `json:"index,omitempty"`
	Status *string  `json:"status,omitempty"`
}

// Call is a tool call that passed schema validation.
// Action is not checked against the known set; dispatch handles unknown values.
type Call struct {
	Action plan.Action
	Tasks  []string
	Index  *int
	Status *plan.Status
}

// SchemaError reports a tool argument that violates the parameter schema.
type SchemaError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateParams applies the parameter schema to p.
func ValidateParams(p Params) (Call, error) {
	c := Call{
		Action: plan.Action(p.Action),
		Tasks:  p.Tasks,
	}

	if p.Index != nil {
		if *p.Index < 0 {
			return Call{}, &SchemaError{Field: "index", Message: fmt.Sprintf("must be >= 0, got %d", *p.Index)}
		}
		idx := *p.Index
		c.Index = &idx
	}

	if p.Status != nil {
		s, err := plan.ParseStatus(*p.Status)
		if err != nil {
			return Call{}, &SchemaError{Field: "status", Message: err.Error()}
		}
		c.Status = &s
	}

	return c, nil
}
