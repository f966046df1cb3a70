package idletime

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// IdleRequest asks for idle seconds detected by the desktop agent to be
// credited back as worked time. Credit lands on the attendance record
// only after approval.
type IdleRequest struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	RequestDate time.Time      `gorm:"type:date;not null"`
	IdleSeconds int64          `gorm:"not null"`
	Reason      string         `gorm:"type:text"`
	Status      ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DecidedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (IdleRequest) TableName() string {
	return "idle_requests"
}
