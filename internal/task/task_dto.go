package task

import "time"

type CreateTaskRequest struct {
	Title         string    `json:"title" binding:"required,min=2,max=200"`
	Description   string    `json:"description" binding:"max=2000"`
	DueDate       time.Time `json:"due_date" binding:"required"`
	RequiresPhoto bool      `json:"requires_photo"`
	AssigneeIDs   []string  `json:"assignee_ids"`
}

type CompleteAssignmentRequest struct {
	VerificationPhotoURL *string `json:"verification_photo_url"`
}

type AssignmentResponse struct {
	ID                   string  `json:"id"`
	TaskID               string  `json:"task_id"`
	UserID               string  `json:"user_id"`
	AssignedAt           string  `json:"assigned_at"`
	Completed            bool    `json:"completed"`
	CompletedAt          *string `json:"completed_at,omitempty"`
	VerificationPhotoURL *string `json:"verification_photo_url,omitempty"`
}

type TaskResponse struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	DueDate       string               `json:"due_date"`
	RequiresPhoto bool                 `json:"requires_photo"`
	BusinessID    string               `json:"business_id"`
	CreatedBy     string               `json:"created_by"`
	CreatedAt     string               `json:"created_at"`
	Status        Status               `json:"status"`
	Overdue       bool                 `json:"overdue"`
	Assignments   []AssignmentResponse `json:"assignments"`
}
