package plan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(i int) *int { return &i }

func statusPtr(s Status) *Status { return &s }

func pendingTasks(names ...string) []Task {
	tasks := make([]Task, len(names))
	for i, n := range names {
		tasks[i] = Task{Name: n, Status: StatusPending}
	}
	return tasks
}

func TestHandleInit(t *testing.T) {
	t.Run("creates tasks from names, all pending", func(t *testing.T) {
		result := HandleInit([]string{"Task A", "Task B", "Task C"})
		if result.Failed() {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		want := pendingTasks("Task A", "Task B", "Task C")
		if diff := cmp.Diff(want, result.Tasks); diff != "" {
			t.Errorf("tasks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("text reports count and status", func(t *testing.T) {
		result := HandleInit([]string{"A", "B"})
		wantText := "Plan initialized with 2 tasks.\n" +
			"Plan: 0/2 complete (0 in progress, 2 pending)\n" +
			"\n" +
			"  ○ [0] A\n" +
			"  ○ [1] B"
		if result.Text != wantText {
			t.Errorf("text mismatch:\ngot:  %q\nwant: %q", result.Text, wantText)
		}
	})

	t.Run("keeps duplicate names as separate tasks", func(t *testing.T) {
		result := HandleInit([]string{"same", "same"})
		if len(result.Tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(result.Tasks))
		}
	})

	tests := []struct {
		name  string
		names []string
	}{
		{name: "empty slice", names: []string{}},
		{name: "nil slice", names: nil},
	}
	for _, tt := range tests {
		t.Run("returns error for "+tt.name, func(t *testing.T) {
			result := HandleInit(tt.names)
			if result.Error != ErrTagTasksRequired {
				t.Errorf("error = %q, want %q", result.Error, ErrTagTasksRequired)
			}
			if result.Tasks == nil || len(result.Tasks) != 0 {
				t.Errorf("expected empty non-nil tasks, got %#v", result.Tasks)
			}
			if result.Text != "Error: tasks array required for init" {
				t.Errorf("unexpected text: %q", result.Text)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	base := pendingTasks("Task A", "Task B", "Task C")

	t.Run("sets only the target status", func(t *testing.T) {
		result := HandleUpdate(base, intPtr(1), statusPtr(StatusComplete))
		if result.Failed() {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		want := []Task{
			{Name: "Task A", Status: StatusPending},
			{Name: "Task B", Status: StatusComplete},
			{Name: "Task C", Status: StatusPending},
		}
		if diff := cmp.Diff(want, result.Tasks); diff != "" {
			t.Errorf("tasks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		original := pendingTasks("Task A")
		result := HandleUpdate(original, intPtr(0), statusPtr(StatusComplete))
		if original[0].Status != StatusPending {
			t.Errorf("input mutated: %s", original[0].Status)
		}
		result.Tasks[0].Name = "changed"
		if original[0].Name != "Task A" {
			t.Error("result aliases the input slice")
		}
	})

	t.Run("index zero is a valid position", func(t *testing.T) {
		result := HandleUpdate(base, intPtr(0), statusPtr(StatusInProgress))
		if result.Failed() {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		if result.Tasks[0].Status != StatusInProgress {
			t.Errorf("status = %s, want in_progress", result.Tasks[0].Status)
		}
	})

	t.Run("can move a task back to pending", func(t *testing.T) {
		tasks := []Task{{Name: "Task A", Status: StatusComplete}}
		result := HandleUpdate(tasks, intPtr(0), statusPtr(StatusPending))
		if result.Tasks[0].Status != StatusPending {
			t.Errorf("status = %s, want pending", result.Tasks[0].Status)
		}
	})

	t.Run("text names the updated task", func(t *testing.T) {
		result := HandleUpdate(base, intPtr(2), statusPtr(StatusInProgress))
		if !strings.HasPrefix(result.Text, "Task 2 \"Task C\" → in_progress\nPlan: 0/3 complete (1 in progress, 2 pending)") {
			t.Errorf("unexpected text: %q", result.Text)
		}
	})

	errorTests := []struct {
		name      string
		tasks     []Task
		index     *int
		status    *Status
		wantError string
		wantText  string
		wantTasks []Task
	}{
		{
			name:      "missing index",
			tasks:     base,
			status:    statusPtr(StatusComplete),
			wantError: "index and status required",
			wantText:  "Error: index and status required for update",
			wantTasks: base,
		},
		{
			name:      "missing status",
			tasks:     base,
			index:     intPtr(0),
			wantError: "index and status required",
			wantText:  "Error: index and status required for update",
			wantTasks: base,
		},
		{
			name:      "missing arguments win over empty plan",
			tasks:     []Task{},
			wantError: "index and status required",
			wantText:  "Error: index and status required for update",
			wantTasks: []Task{},
		},
		{
			name:      "no plan active",
			tasks:     []Task{},
			index:     intPtr(0),
			status:    statusPtr(StatusComplete),
			wantError: "no plan active",
			wantText:  "Error: no plan active. Use init first.",
			wantTasks: []Task{},
		},
		{
			name:      "index too high",
			tasks:     base,
			index:     intPtr(5),
			status:    statusPtr(StatusComplete),
			wantError: "index 5 out of range",
			wantText:  "Error: index 5 out of range (0-2)",
			wantTasks: base,
		},
		{
			name:      "negative index",
			tasks:     base,
			index:     intPtr(-1),
			status:    statusPtr(StatusComplete),
			wantError: "index -1 out of range",
			wantText:  "Error: index -1 out of range (0-2)",
			wantTasks: base,
		},
		{
			name:      "index equal to length",
			tasks:     base,
			index:     intPtr(3),
			status:    statusPtr(StatusComplete),
			wantError: "index 3 out of range",
			wantText:  "Error: index 3 out of range (0-2)",
			wantTasks: base,
		},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleUpdate(tt.tasks, tt.index, tt.status)
			if result.Error != tt.wantError {
				t.Errorf("error = %q, want %q", result.Error, tt.wantError)
			}
			if result.Text != tt.wantText {
				t.Errorf("text = %q, want %q", result.Text, tt.wantText)
			}
			if diff := cmp.Diff(tt.wantTasks, result.Tasks); diff != "" {
				t.Errorf("tasks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	t.Run("reports counts", func(t *testing.T) {
		tasks := []Task{
			{Name: "Task A", Status: StatusComplete},
			{Name: "Task B", Status: StatusInProgress},
			{Name: "Task C", Status: StatusPending},
		}
		result := HandleStatus(tasks)
		if result.Failed() {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		for _, want := range []string{"1/3 complete", "1 in progress", "1 pending"} {
			if !strings.Contains(result.Text, want) {
				t.Errorf("expected %q in %q", want, result.Text)
			}
		}
		if diff := cmp.Diff(tasks, result.Tasks); diff != "" {
			t.Errorf("tasks changed (-want +got):\n%s", diff)
		}
	})

	t.Run("empty plan", func(t *testing.T) {
		result := HandleStatus([]Task{})
		if result.Text != "No plan active." {
			t.Errorf("text = %q, want %q", result.Text, "No plan active.")
		}
	})
}

func TestHandleClear(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []Task
		wantText string
	}{
		{
			name: "removes tasks",
			tasks: []Task{
				{Name: "A", Status: StatusPending},
				{Name: "B", Status: StatusComplete},
			},
			wantText: "Plan cleared (2 tasks removed).",
		},
		{
			name:     "already empty",
			tasks:    []Task{},
			wantText: "No plan was active.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleClear(tt.tasks)
			if result.Text != tt.wantText {
				t.Errorf("text = %q, want %q", result.Text, tt.wantText)
			}
			if result.Failed() {
				t.Errorf("unexpected error: %s", result.Error)
			}
			if result.Tasks == nil || len(result.Tasks) != 0 {
				t.Errorf("expected empty tasks, got %#v", result.Tasks)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		got, err := ParseAction(string(a))
		if err != nil {
			t.Errorf("ParseAction(%q) error: %v", a, err)
		}
		if got != a {
			t.Errorf("ParseAction(%q) = %q", a, got)
		}
	}
	if _, err := ParseAction("delete"); err == nil {
		t.Error("expected error for unknown action")
	}
}
