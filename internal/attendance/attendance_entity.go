package attendance

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of timer states for one (employee, day) record.
type Status string

const (
	StatusNone       Status = "NONE"
	StatusWorking    Status = "WORKING"
	StatusBreak      Status = "BREAK"
	StatusStopped    Status = "STOPPED"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusLeave      Status = "LEAVE"
)

const (
	// MaxBreakSecondsPerDay hard-caps cumulative break accrual per record.
	MaxBreakSecondsPerDay int64 = 3600

	// DefaultDailyRequiredHours is snapshotted onto a record when the
	// employee has no work-hour requirement version yet.
	DefaultDailyRequiredHours float64 = 8
)

// Record is the attendance ledger row for one employee and one calendar day.
// WorkSeconds and BreakSeconds only grow when a transition flushes the open
// interval; reads add a transient live delta without persisting it.
type Record struct {
	ID                 uuid.UUID
	EmployeeID         uuid.UUID
	RecordDate         time.Time
	Status             Status
	FirstCheckIn       *time.Time
	LastCheckOut       *time.Time
	WorkSeconds        int64
	BreakSeconds       int64
	LastStatusChange   *time.Time
	RequiredHours      float64
	HoursShortage      *float64
	CumulativeShortage *float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RemainingBreakSeconds reports how much of today's break budget is left.
func (r *Record) RemainingBreakSeconds() int64 {
	remaining := MaxBreakSecondsPerDay - r.BreakSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DayOf truncates a timestamp to its local calendar day, the record key.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
