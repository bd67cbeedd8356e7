package components

import (
	"testing"

	"github.com/pablasso/plantrack/internal/plan"
)

func tasksWith(complete, inProgress, pending int) []plan.Task {
	var tasks []plan.Task
	add := func(n int, s plan.Status) {
		for i := 0; i < n; i++ {
			tasks = append(tasks, plan.Task{Name: "t", Status: s})
		}
	}
	add(complete, plan.StatusComplete)
	add(inProgress, plan.StatusInProgress)
	add(pending, plan.StatusPending)
	return tasks
}

func TestProgress_View(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []plan.Task
		width    int
		expected string
	}{
		{"nothing done", tasksWith(0, 0, 4), 8, "□□□□□□□□ 0/4 0%"},
		{"half done", tasksWith(2, 0, 2), 8, "■■■■□□□□ 2/4 50%"},
		{"all done", tasksWith(4, 0, 0), 8, "■■■■■■■■ 4/4 100%"},
		{"in progress shown as partial", tasksWith(1, 1, 2), 8, "■■▣▣□□□□ 1/4 25%"},
		{"uneven division", tasksWith(1, 0, 2), 6, "■■□□□□ 1/3 33%"},
		{"width smaller than total", tasksWith(3, 0, 7), 4, "■□□□ 3/10 30%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewProgress(tt.tasks, tt.width).View()
			if result != tt.expected {
				t.Errorf("View() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestProgress_View_Empty(t *testing.T) {
	if result := NewProgress(nil, 8).View(); result != "" {
		t.Errorf("expected empty string for empty plan, got: %s", result)
	}
	if result := NewProgress(tasksWith(1, 0, 1), 0).View(); result != "" {
		t.Errorf("expected empty string for zero width, got: %s", result)
	}
}

func TestProgress_View_ClampsCounts(t *testing.T) {
	p := Progress{Counts: plan.Counts{Complete: 9, InProgress: 3, Total: 4}, Width: 4}
	if result := p.View(); result != "■■■■ 4/4 100%" {
		t.Errorf("View() = %q", result)
	}
}
