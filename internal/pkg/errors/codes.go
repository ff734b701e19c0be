package errors

import "net/http"

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodePersistence    = "PERSISTENCE_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

var (
	ErrValidation = New(
		CodeValidation,
		"Favorite location is invalid",
		http.StatusBadRequest,
	)

	ErrPersistence = New(
		CodePersistence,
		"Storage operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		CodeInvalidRequest,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternalServer = New(
		CodeInternal,
		"Internal server error",
		http.StatusInternalServerError,
	)
)
