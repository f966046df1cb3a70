package events

import "time"

const IdleApprovalUpdateTopic = "tna.idle.approval.v1"

type IdleApprovalUpdateEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	EmployeeID     string    `json:"employee_id"`
	RequestDate    string    `json:"request_date"`
	CreditedSecs   int64     `json:"credited_seconds"`
	ApprovalStatus string    `json:"approval_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
