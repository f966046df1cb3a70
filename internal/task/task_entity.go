package task

import (
	"time"

	"github.com/google/uuid"
)

// TaskTimer is a per-task work session. At most one timer runs per
// employee at a time; starting a new one stops the previous.
type TaskTimer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TaskName     string    `gorm:"type:varchar(255);not null"`
	StartedAt    time.Time `gorm:"not null"`
	StoppedAt    *time.Time
	TotalSeconds int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TaskTimer) TableName() string {
	return "task_timers"
}

func (t *TaskTimer) Running() bool {
	return t.StoppedAt == nil
}
