package events

import "time"

const AttendanceUpdateTopic = "tna.attendance.update.v1"

// AttendanceUpdateEvent is broadcast on every successful status transition
// so dashboards can mirror the timer without polling.
type AttendanceUpdateEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	EmployeeID      string    `json:"employee_id"`
	Status          string    `json:"status"`
	Source          string    `json:"source"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}
