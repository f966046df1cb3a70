package taskerrors

import (
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrTimerNotFound = apperror.New(
		apperror.CodeNotFound,
		"task timer not found",
		http.StatusNotFound,
	)

	ErrNoRunningTimer = apperror.New(
		apperror.CodeStateConflict,
		"no task timer is running",
		http.StatusConflict,
	)

	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee id must be a valid uuid",
		http.StatusBadRequest,
	)
)
