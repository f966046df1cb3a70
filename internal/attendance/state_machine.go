package attendance

import (
	"fmt"
	"time"

	attendanceerrors "go-timeclock/internal/attendance/errors"
)

// Action is a timer transition request.
type Action string

const (
	ActionStart    Action = "START"
	ActionBreak    Action = "BREAK"
	ActionStop     Action = "STOP"
	ActionCheckout Action = "CHECKOUT"
)

// DebounceWindow suppresses a second transition arriving within this
// interval of the previous one (duplicate badge taps).
const DebounceWindow = time.Second

// Apply validates and executes one transition against the record, flushing
// the open elapsed interval into whichever duration was accruing. It mutates
// the record only on success; every guard failure leaves it untouched.
//
// Legal transitions: none/stopped/break -> working, working -> break,
// working/break -> stopped, any active -> checked-out. LEAVE and
// CHECKED_OUT are terminal here.
func Apply(rec *Record, action Action, now time.Time) error {
	switch action {
	case ActionStart:
		switch rec.Status {
		case StatusWorking:
			return attendanceerrors.ErrAlreadyWorking
		case StatusCheckedOut:
			return attendanceerrors.ErrAlreadyCheckedOut
		case StatusLeave:
			return attendanceerrors.ErrOnLeave
		case StatusBreak:
			flushBreak(rec, now)
		}
		if rec.FirstCheckIn == nil {
			t := now
			rec.FirstCheckIn = &t
		}
		rec.Status = StatusWorking

	case ActionBreak:
		if rec.Status != StatusWorking {
			return attendanceerrors.ErrNotWorking
		}
		flushWork(rec, now)
		rec.Status = StatusBreak

	case ActionStop:
		switch rec.Status {
		case StatusWorking:
			flushWork(rec, now)
		case StatusBreak:
			flushBreak(rec, now)
		default:
			return attendanceerrors.ErrNoActiveSession
		}
		rec.Status = StatusStopped

	case ActionCheckout:
		switch rec.Status {
		case StatusWorking:
			flushWork(rec, now)
		case StatusBreak:
			flushBreak(rec, now)
		case StatusStopped:
			// nothing open to flush
		default:
			return attendanceerrors.ErrNoActiveSession
		}
		rec.Status = StatusCheckedOut
		t := now
		rec.LastCheckOut = &t

	default:
		return fmt.Errorf("unknown attendance action: %s", action)
	}

	t := now
	rec.LastStatusChange = &t
	return nil
}

// ApplyShortage finalizes the day's deficit at checkout. Shortage is in
// hours, signed; negative means surplus. prevCumulative is the running sum
// carried from the most recent prior record (0 when none exists).
func ApplyShortage(rec *Record, prevCumulative float64) {
	requiredSeconds := int64(rec.RequiredHours * 3600)
	shortage := float64(requiredSeconds-rec.WorkSeconds) / 3600
	cumulative := prevCumulative + shortage
	rec.HoursShortage = &shortage
	rec.CumulativeShortage = &cumulative
}

// LiveTotals returns work and break seconds with the open interval added
// when the record is actively accruing. Stored fields are never modified.
func LiveTotals(rec *Record, now time.Time) (workSeconds, breakSeconds int64) {
	workSeconds = rec.WorkSeconds
	breakSeconds = rec.BreakSeconds
	switch rec.Status {
	case StatusWorking:
		workSeconds += elapsedSeconds(rec.LastStatusChange, now)
	case StatusBreak:
		breakSeconds += capBreakDelta(rec, elapsedSeconds(rec.LastStatusChange, now))
	}
	return workSeconds, breakSeconds
}

// OpenIntervalSeconds is the ticking value for the UI timer: seconds since
// the last transition while the record is actively accruing, 0 otherwise.
func OpenIntervalSeconds(rec *Record, now time.Time) int64 {
	switch rec.Status {
	case StatusWorking:
		return elapsedSeconds(rec.LastStatusChange, now)
	case StatusBreak:
		return capBreakDelta(rec, elapsedSeconds(rec.LastStatusChange, now))
	default:
		return 0
	}
}

// Debounced reports whether a transition at now falls inside the debounce
// window of the previous one.
func Debounced(lastStatusChange *time.Time, now time.Time) bool {
	if lastStatusChange == nil {
		return false
	}
	return now.Sub(*lastStatusChange) < DebounceWindow
}

func flushWork(rec *Record, now time.Time) {
	rec.WorkSeconds += elapsedSeconds(rec.LastStatusChange, now)
}

func flushBreak(rec *Record, now time.Time) {
	rec.BreakSeconds += capBreakDelta(rec, elapsedSeconds(rec.LastStatusChange, now))
}

// capBreakDelta clamps a break interval to the remaining daily budget.
func capBreakDelta(rec *Record, elapsed int64) int64 {
	remaining := MaxBreakSecondsPerDay - rec.BreakSeconds
	if remaining <= 0 {
		return 0
	}
	if elapsed > remaining {
		return remaining
	}
	return elapsed
}

func elapsedSeconds(since *time.Time, now time.Time) int64 {
	if since == nil {
		return 0
	}
	secs := int64(now.Sub(*since).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
