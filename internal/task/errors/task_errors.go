package taskerrors

import (
	"net/http"

	"crewtask/internal/shared/apperror"
)

var (
	ErrTaskNotFound = apperror.New(
		apperror.CodeNotFound,
		"Task not found",
		http.StatusNotFound,
	)

	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Assignment not found",
		http.StatusNotFound,
	)

	ErrNoAssignees = apperror.New(
		apperror.CodeInvalidInput,
		"At least one assignee is required",
		http.StatusBadRequest,
	)

	ErrAssigneeOutsideBusiness = apperror.New(
		apperror.CodeForbidden,
		"All assignees must belong to your business",
		http.StatusForbidden,
	)

	ErrNotAssignee = apperror.New(
		apperror.CodeForbidden,
		"You can only complete your own assignment",
		http.StatusForbidden,
	)

	ErrAlreadyCompleted = apperror.New(
		apperror.CodeConflict,
		"Assignment is already completed",
		http.StatusConflict,
	)

	ErrInvalidTaskID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid task ID",
		http.StatusBadRequest,
	)

	ErrInvalidAssignmentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid assignment ID",
		http.StatusBadRequest,
	)

	ErrInvalidAssigneeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid assignee ID",
		http.StatusBadRequest,
	)
)
