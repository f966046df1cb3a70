package idletimeerrors

import (
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"idle request not found",
		http.StatusNotFound,
	)

	ErrAlreadyDecided = apperror.New(
		apperror.CodeStateConflict,
		"idle request has already been decided",
		http.StatusConflict,
	)

	ErrInvalidIdleSeconds = apperror.New(
		apperror.CodeInvalidInput,
		"idle seconds must be positive",
		http.StatusBadRequest,
	)

	ErrInvalidRequestDate = apperror.New(
		apperror.CodeInvalidInput,
		"request date must be formatted as YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee id must be a valid uuid",
		http.StatusBadRequest,
	)
)
