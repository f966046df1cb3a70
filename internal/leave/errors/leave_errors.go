package leaveerrors

import (
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)

	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"an overlapping leave request already exists",
		http.StatusConflict,
	)

	ErrAlreadyDecided = apperror.New(
		apperror.CodeStateConflict,
		"leave request has already been decided",
		http.StatusConflict,
	)

	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start date must not be after end date",
		http.StatusBadRequest,
	)

	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"dates must be formatted as YYYY-MM-DD",
		http.StatusBadRequest,
	)

	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee id must be a valid uuid",
		http.StatusBadRequest,
	)
)
