package workcalendarerrors

import (
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrSettingsNotFound = apperror.New(
		apperror.CodeNotFound,
		"No calendar settings in effect for this date",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidWeeklyOffDays = apperror.New(
		apperror.CodeInvalidInput,
		"Weekly off days must be weekday numbers between 0 and 6",
		http.StatusBadRequest,
	)
)
