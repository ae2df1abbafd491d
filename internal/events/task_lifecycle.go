package events

import "time"

const TaskLifecycleTopic = "tasks.task.lifecycle.v1"

const (
	EventTaskCreated         = "task_created"
	EventAssignmentCompleted = "assignment_completed"
)

type TaskCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	TaskID     string    `json:"task_id"`
	BusinessID string    `json:"business_id"`
	CreatedBy  string    `json:"created_by"`
	Assignees  []string  `json:"assignees"`
	OccurredAt time.Time `json:"occurred_at"`
}

type AssignmentCompletedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	TaskID       string    `json:"task_id"`
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	BusinessID   string    `json:"business_id"`
	HasPhoto     bool      `json:"has_photo"`
	OccurredAt   time.Time `json:"occurred_at"`
}
