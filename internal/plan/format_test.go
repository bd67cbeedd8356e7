package plan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatStatus(t *testing.T) {
	t.Run("returns no plan active for empty list", func(t *testing.T) {
		if got := FormatStatus(nil); got != "No plan active." {
			t.Errorf("got %q", got)
		}
		if got := FormatStatus([]Task{}); got != "No plan active." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("full layout", func(t *testing.T) {
		tasks := []Task{
			{Name: "Done", Status: StatusComplete},
			{Name: "Working", Status: StatusInProgress},
			{Name: "Todo", Status: StatusPending},
		}
		want := "Plan: 1/3 complete (1 in progress, 1 pending)\n" +
			"\n" +
			"  ✓ [0] Done\n" +
			"  → [1] Working\n" +
			"  ○ [2] Todo"
		if got := FormatStatus(tasks); got != want {
			t.Errorf("mismatch:\ngot:  %q\nwant: %q", got, want)
		}
	})

	tests := []struct {
		name  string
		tasks []Task
		want  []string
	}{
		{
			name: "all complete",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusComplete},
			},
			want: []string{"2/2 complete", "0 in progress", "0 pending"},
		},
		{
			name:  "all pending",
			tasks: pendingTasks("A", "B"),
			want:  []string{"0/2 complete", "2 pending"},
		},
		{
			name: "mixed",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusInProgress},
				{Name: "C", Status: StatusPending},
				{Name: "D", Status: StatusComplete},
			},
			want: []string{"2/4 complete", "1 in progress", "1 pending"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatStatus(tt.tasks)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("expected %q in %q", w, got)
				}
			}
		})
	}
}

func TestFormatWidget(t *testing.T) {
	tests := []struct {
		name  string
		tasks []Task
		want  WidgetData
	}{
		{
			name:  "empty",
			tasks: []Task{},
			want:  WidgetData{Icons: []string{}},
		},
		{
			name: "icons counts and current",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusInProgress},
				{Name: "C", Status: StatusPending},
			},
			want: WidgetData{Icons: []string{"✓", "→", "○"}, Complete: 1, Total: 3, CurrentName: "B"},
		},
		{
			name: "first in_progress wins",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusInProgress},
				{Name: "C", Status: StatusInProgress},
			},
			want: WidgetData{Icons: []string{"✓", "→", "→"}, Complete: 1, Total: 3, CurrentName: "B"},
		},
		{
			name: "in_progress beats earlier pending",
			tasks: []Task{
				{Name: "A", Status: StatusPending},
				{Name: "B", Status: StatusInProgress},
			},
			want: WidgetData{Icons: []string{"○", "→"}, Complete: 0, Total: 2, CurrentName: "B"},
		},
		{
			name: "falls back to first pending",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusPending},
				{Name: "C", Status: StatusPending},
			},
			want: WidgetData{Icons: []string{"✓", "○", "○"}, Complete: 1, Total: 3, CurrentName: "B"},
		},
		{
			name: "all complete",
			tasks: []Task{
				{Name: "A", Status: StatusComplete},
				{Name: "B", Status: StatusComplete},
			},
			want: WidgetData{Icons: []string{"✓", "✓"}, Complete: 2, Total: 2, CurrentName: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatWidget(tt.tasks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("widget mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatusIcon(t *testing.T) {
	if got := Status("bogus").Icon(); got != IconPending {
		t.Errorf("unknown status icon = %q, want %q", got, IconPending)
	}
	for _, s := range Statuses() {
		if _, err := ParseStatus(string(s)); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseStatus("completed"); err == nil {
		t.Error("expected error for unknown status")
	}
}
