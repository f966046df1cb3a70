package attendanceerrors

import (
	"errors"
	"net/http"

	"go-timeclock/internal/shared/apperror"
)

var (
	ErrAlreadyWorking = apperror.New(
		apperror.CodeStateConflict,
		"Timer is already running",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeStateConflict,
		"Already checked out for today",
		http.StatusConflict,
	)
	ErrNotWorking = apperror.New(
		apperror.CodeStateConflict,
		"Timer is not running",
		http.StatusConflict,
	)
	ErrNoActiveSession = apperror.New(
		apperror.CodeStateConflict,
		"No active session to stop",
		http.StatusConflict,
	)
	ErrNoRecordToday = apperror.New(
		apperror.CodeNotFound,
		"No attendance record for today",
		http.StatusNotFound,
	)
	ErrOnLeave = apperror.New(
		apperror.CodeStateConflict,
		"Employee is on leave today",
		http.StatusConflict,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Attendance record not found",
		http.StatusNotFound,
	)
	ErrDuplicateRecord = apperror.New(
		apperror.CodeConflict,
		"Attendance record already exists for this day",
		http.StatusConflict,
	)
	ErrDayHasActivity = apperror.New(
		apperror.CodeStateConflict,
		"Attendance already recorded for this day",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)

	// ErrDebounced is internal to the device event path. It is logged and
	// swallowed by the adapter, never surfaced to an interactive caller.
	ErrDebounced = errors.New("device event inside debounce window")
)
