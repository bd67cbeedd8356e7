// Package tracker connects the pure plan operations to a host session:
// it owns the live plan, dispatches tool calls, persists every result and
// keeps the widget in sync.
package tracker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pablasso/plantrack/internal/plan"
)

// HistorySource supplies the ordered records of the active branch.
type HistorySource interface {
	Branch(ctx context.Context) ([]plan.Record, error)
}

// RecordSink persists one tool result per executed call.
type RecordSink interface {
	AppendToolResult(ctx context.Context, r ToolResult) error
}

// Display shows the plan widget. A nil widget hides it.
type Display interface {
	SetWidget(data *plan.WidgetData)
}

// ToolResult is the outcome of one tool call as shown to the agent and
// stored in session history.
type ToolResult struct {
	CallID   string       `json:"callId,omitempty"`
	ToolName string       `json:"toolName"`
	Text     string       `json:"text"`
	Details  plan.Details `json:"details"`
}

// Failed reports whether the call produced an error result.
func (r ToolResult) Failed() bool {
	return r.Details.Error != ""
}

// Tracker is the live plan of one session. It is not safe for concurrent
// use; the host serializes tool calls and lifecycle events.
type Tracker struct {
	tasks   []plan.Task
	history HistorySource
	sink    RecordSink
	display Display
	logger  *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithDisplay sets the widget surface refreshed after state changes.
func WithDisplay(d Display) Option {
	return func(t *Tracker) {
		t.display = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tracker with an empty plan. Call HandleEvent with
// EventSessionStart to load the plan from history.
func New(history HistorySource, sink RecordSink, opts ...Option) *Tracker {
	t := &Tracker{
		tasks:   []plan.Task{},
		history: history,
		sink:    sink,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tasks returns a copy of the live plan.
func (t *Tracker) Tasks() []plan.Task {
	return plan.Clone(t.tasks)
}

// HandleEvent reacts to a session lifecycle event by rebuilding the plan
// from the active branch.
func (t *Tracker) HandleEvent(ctx context.Context, ev Event) error {
	if _, err := ParseEvent(string(ev)); err != nil {
		return err
	}
	t.logger.Debug("session event", zap.String("event", string(ev)))
	return t.Reconstruct(ctx)
}

// Reconstruct replaces the live plan with the one replayed from history.
func (t *Tracker) Reconstruct(ctx context.Context) error {
	records, err := t.history.Branch(ctx)
	if err != nil {
		t.logger.Warn("failed to read session branch", zap.Error(err))
		return fmt.Errorf("failed to read session branch: %w", err)
	}

	t.tasks = plan.Reconstruct(records)
	t.logger.Debug("plan reconstructed",
		zap.Int("records", len(records)),
		zap.Int("tasks", len(t.tasks)))
	t.refresh()
	return nil
}

// Execute runs one tool call. Schema violations are returned as errors and
// nothing is persisted. Every other call, including ones that produce an
// error result, is persisted before the live plan changes.
func (t *Tracker) Execute(ctx context.Context, callID string, p Params) (ToolResult, error) {
	call, err := ValidateParams(p)
	if err != nil {
		t.logger.Warn("rejected tool call", zap.String("call_id", callID), zap.Error(err))
		return ToolResult{}, err
	}

	result, next, changed := t.dispatch(call)
	result.CallID = callID

	if err := t.sink.AppendToolResult(ctx, result); err != nil {
		t.logger.Warn("failed to persist tool result",
			zap.String("call_id", callID),
			zap.String("action", string(result.Details.Action)),
			zap.Error(err))
		return result, fmt.Errorf("failed to persist %s result: %w", result.Details.Action, err)
	}

	if changed {
		t.tasks = next
		t.refresh()
	}

	fields := []zap.Field{
		zap.String("call_id", callID),
		zap.String("action", string(result.Details.Action)),
		zap.Int("tasks", len(t.tasks)),
	}
	if result.Failed() {
		t.logger.Info("tool call failed", append(fields, zap.String("error", result.Details.Error))...)
	} else {
		t.logger.Debug("tool call succeeded", fields...)
	}
	return result, nil
}

// dispatch computes the result of call against the live plan and the plan
// that should replace it. changed is false when the live plan must be kept.
func (t *Tracker) dispatch(call Call) (result ToolResult, next []plan.Task, changed bool) {
	switch call.Action {
	case plan.ActionInit:
		r := plan.HandleInit(call.Tasks)
		if r.Failed() {
			// The failed init's record carries the live plan so the
			// active plan survives in history views.
			return newToolResult(call.Action, r.Text, plan.Clone(t.tasks), r.Error), nil, false
		}
		return newToolResult(call.Action, r.Text, r.Tasks, ""), r.Tasks, true

	case plan.ActionUpdate:
		r := plan.HandleUpdate(t.tasks, call.Index, call.Status)
		return newToolResult(call.Action, r.Text, r.Tasks, r.Error), r.Tasks, true

	case plan.ActionStatus:
		r := plan.HandleStatus(t.tasks)
		return newToolResult(call.Action, r.Text, r.Tasks, ""), nil, false

	case plan.ActionClear:
		r := plan.HandleClear(t.tasks)
		return newToolResult(call.Action, r.Text, r.Tasks, ""), r.Tasks, true

	default:
		text := fmt.Sprintf("Unknown action: %s", call.Action)
		return newToolResult(plan.ActionStatus, text, plan.Clone(t.tasks), plan.ErrTagUnknownAction), nil, false
	}
}

func newToolResult(action plan.Action, text string, tasks []plan.Task, errTag string) ToolResult {
	return ToolResult{
		ToolName: plan.ToolName,
		Text:     text,
		Details: plan.Details{
			Action: action,
			Tasks:  plan.Clone(tasks),
			Error:  errTag,
		},
	}
}

// refresh pushes the current widget projection to the display.
func (t *Tracker) refresh() {
	if t.display == nil {
		return
	}
	if len(t.tasks) == 0 {
		t.display.SetWidget(nil)
		return
	}
	data := plan.FormatWidget(t.tasks)
	t.display.SetWidget(&data)
}
