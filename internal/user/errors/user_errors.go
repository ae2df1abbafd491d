package usererrors

import (
	"crewtask/internal/shared/apperror"
	"net/http"
)

var (
	ErrProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"User profile not found. Please contact an administrator.",
		http.StatusNotFound,
	)
	ErrProfileConflict = apperror.New(
		apperror.CodeInternalError,
		"User profile data is inconsistent",
		http.StatusInternalServerError,
	)
	ErrCrossBusiness = apperror.New(
		apperror.CodeForbidden,
		"You can only update users in your own business",
		http.StatusForbidden,
	)
	ErrAdminRoleImmutable = apperror.New(
		apperror.CodeConflict,
		"Admin roles cannot be changed",
		http.StatusConflict,
	)
	ErrRoleNotAssignable = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be worker or manager",
		http.StatusBadRequest,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid user ID",
		http.StatusBadRequest,
	)
)
