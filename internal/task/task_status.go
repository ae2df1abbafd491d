package task

import "time"

type Status string

const (
	StatusPending            Status = "PENDING"
	StatusPartiallyCompleted Status = "PARTIALLY_COMPLETED"
	StatusCompleted          Status = "COMPLETED"
)

// DeriveStatus reduces a task's assignment set to its aggregate status.
// A task with no assignments is pending, never completed.
func DeriveStatus(assignments []TaskAssignment) Status {
	if len(assignments) == 0 {
		return StatusPending
	}

	completed := 0
	for _, a := range assignments {
		if a.Completed {
			completed++
		}
	}

	switch completed {
	case 0:
		return StatusPending
	case len(assignments):
		return StatusCompleted
	default:
		return StatusPartiallyCompleted
	}
}

// Overdue reports whether a not-fully-completed task has passed its due date.
func Overdue(t Task, assignments []TaskAssignment, now time.Time) bool {
	if DeriveStatus(assignments) == StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}
