package session

import (
	"encoding/json"
	"time"

	"github.com/pablasso/plantrack/internal/plan"
)

// Entry types
const (
	EntryTypeMessage = plan.RecordKindMessage
)

// Message roles
const (
	RoleUser       = "user"
	RoleAssistant  = "assistant"
	RoleToolResult = plan.RecordRoleToolResult
)

// Entry is one node of a session's history tree. Entries are append-only;
// a branch is the path from the root to a leaf following ParentID links.
type Entry struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId,omitempty"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
}

// Message is the payload of a message entry.
type Message struct {
	Role       string          `json:"role"`
	ToolName   string          `json:"toolName,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	Content    string          `json:"content,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Record converts e into the shape used for plan reconstruction.
// Details that fail to decode are dropped so the entry is skipped on replay.
func (e Entry) Record() plan.Record {
	r := plan.Record{Kind: e.Type}
	if e.Message == nil {
		return r
	}
	r.Role = e.Message.Role
	r.ToolName = e.Message.ToolName
	if len(e.Message.Details) > 0 {
		var d plan.Details
		if err := json.Unmarshal(e.Message.Details, &d); err == nil {
			r.Details = &d
		}
	}
	return r
}

// Details decodes the plan details of a tool result entry, if any.
func (e Entry) Details() (*plan.Details, bool) {
	r := e.Record()
	if !r.IsPlanResult() {
		return nil, false
	}
	return r.Details, true
}
