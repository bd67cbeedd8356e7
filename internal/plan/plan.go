package plan

// Counts summarizes a task list by status.
type Counts struct {
	Complete   int
	InProgress int
	Pending    int
	Total      int
}

// Clone returns a copy of tasks that shares no backing array with the input.
// The result is never nil so an empty plan always encodes as [].
func Clone(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// Count tallies tasks by status.
func Count(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for i := range tasks {
		switch tasks[i].Status {
		case StatusComplete:
			c.Complete++
		case StatusInProgress:
			c.InProgress++
		case StatusPending:
			c.Pending++
		}
	}
	return c
}

// Current returns the index of the task to work on next: the first
// in_progress task, else the first pending task. Returns -1 if all tasks are
// complete or the plan is empty.
func Current(tasks []Task) int {
	for i := range tasks {
		if tasks[i].Status == StatusInProgress {
			return i
		}
	}
	for i := range tasks {
		if tasks[i].Status == StatusPending {
			return i
		}
	}
	return -1
}

// AllComplete returns true if the plan is non-empty and every task is complete.
func AllComplete(tasks []Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for i := range tasks {
		if tasks[i].Status != StatusComplete {
			return false
		}
	}
	return true
}
