package requirementerrors

import (
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrRequirementNotFound = apperror.New(
		apperror.CodeNotFound,
		"No work-hour requirement in effect for this employee",
		http.StatusNotFound,
	)
	ErrInvalidEffectiveFrom = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid effective_from format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEffectiveFromBeforeCurrent = apperror.New(
		apperror.CodeConflict,
		"effective_from must be after the current version's effective_from",
		http.StatusConflict,
	)
	ErrInvalidDailyHours = apperror.New(
		apperror.CodeInvalidInput,
		"Daily hours must be between 0 and 24",
		http.StatusBadRequest,
	)
)
