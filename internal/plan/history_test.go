package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func toolResult(d Details) Record {
	return Record{
		Kind:     RecordKindMessage,
		Role:     RecordRoleToolResult,
		ToolName: ToolName,
		Details:  &d,
	}
}

func TestReconstruct_Empty(t *testing.T) {
	records := []Record{
		{Kind: RecordKindMessage, Role: "user"},
		{Kind: RecordKindMessage, Role: "assistant"},
	}
	got := Reconstruct(records)
	if diff := cmp.Diff([]Task{}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_LastWriteWins(t *testing.T) {
	t1 := pendingTasks("A", "B", "C")
	t2 := []Task{
		{Name: "A", Status: StatusInProgress},
		{Name: "B", Status: StatusPending},
		{Name: "C", Status: StatusPending},
	}
	t3 := []Task{
		{Name: "A", Status: StatusComplete},
		{Name: "B", Status: StatusInProgress},
		{Name: "C", Status: StatusPending},
	}
	records := []Record{
		toolResult(Details{Action: ActionInit, Tasks: t1}),
		toolResult(Details{Action: ActionUpdate, Tasks: t2}),
		toolResult(Details{Action: ActionUpdate, Tasks: t3}),
	}

	got := Reconstruct(records)
	if diff := cmp.Diff(t3, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	again := Reconstruct(records)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("replay not deterministic (-first +second):\n%s", diff)
	}
}

func TestReconstruct_IgnoresErrors(t *testing.T) {
	initTasks := []Task{{Name: "A", Status: StatusPending}}
	ok := toolResult(Details{Action: ActionInit, Tasks: initTasks})
	failed := toolResult(Details{
		Action: ActionUpdate,
		Tasks:  []Task{{Name: "A", Status: StatusComplete}},
		Error:  "index 3 out of range",
	})
	clearFailed := toolResult(Details{Action: ActionInit, Tasks: []Task{}, Error: ErrTagTasksRequired})

	with := Reconstruct([]Record{ok, failed, clearFailed})
	without := Reconstruct([]Record{ok})

	if diff := cmp.Diff(initTasks, with); diff != "" {
		t.Errorf("error record applied (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(without, with); diff != "" {
		t.Errorf("error records changed the result (-without +with):\n%s", diff)
	}
}

func TestReconstruct_IgnoresOtherRecords(t *testing.T) {
	other := toolResult(Details{Action: ActionInit, Tasks: pendingTasks("X")})
	other.ToolName = "other_tool"
	notResult := toolResult(Details{Action: ActionInit, Tasks: pendingTasks("Y")})
	notResult.Role = "assistant"
	otherKind := toolResult(Details{Action: ActionInit, Tasks: pendingTasks("Z")})
	otherKind.Kind = "compaction"
	noDetails := Record{Kind: RecordKindMessage, Role: RecordRoleToolResult, ToolName: ToolName}

	records := []Record{
		toolResult(Details{Action: ActionInit, Tasks: pendingTasks("A")}),
		other,
		notResult,
		otherKind,
		noDetails,
	}
	got := Reconstruct(records)
	if diff := cmp.Diff(pendingTasks("A"), got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_ClearThenReinit(t *testing.T) {
	records := []Record{
		toolResult(Details{Action: ActionInit, Tasks: pendingTasks("A")}),
		toolResult(Details{Action: ActionClear, Tasks: []Task{}}),
	}
	if got := Reconstruct(records); len(got) != 0 {
		t.Fatalf("expected empty plan after clear, got %v", got)
	}

	records = append(records, toolResult(Details{Action: ActionInit, Tasks: pendingTasks("B", "C")}))
	if diff := cmp.Diff(pendingTasks("B", "C"), Reconstruct(records)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_RoundTripFromInit(t *testing.T) {
	result := HandleInit([]string{"one", "two", "three"})
	record := toolResult(Details{Action: ActionInit, Tasks: result.Tasks})

	got := Reconstruct([]Record{record})
	if diff := cmp.Diff(result.Tasks, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstruct_DoesNotAliasRecords(t *testing.T) {
	d := Details{Action: ActionInit, Tasks: pendingTasks("A")}
	got := Reconstruct([]Record{toolResult(d)})
	got[0].Name = "mutated"
	if d.Tasks[0].Name != "A" {
		t.Error("reconstructed plan aliases record payload")
	}
}

func TestReduce(t *testing.T) {
	state := pendingTasks("A")
	if diff := cmp.Diff(state, Reduce(state, Details{Error: "boom", Tasks: pendingTasks("B")})); diff != "" {
		t.Errorf("failed details applied (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pendingTasks("B"), Reduce(state, Details{Tasks: pendingTasks("B")})); diff != "" {
		t.Errorf("successful details not applied (-want +got):\n%s", diff)
	}
}
