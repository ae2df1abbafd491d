package businesserrors

import (
	"net/http"

	"crewtask/internal/shared/apperror"
)

var (
	ErrBusinessNotFound = apperror.New(
		apperror.CodeNotFound,
		"Business not found",
		http.StatusNotFound,
	)

	ErrBusinessAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Business with the same name already exists",
		http.StatusConflict,
	)

	ErrInvalidBusinessID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid business ID",
		http.StatusBadRequest,
	)
)
