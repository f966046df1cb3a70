package leave

import (
	"time"

	"github.com/google/uuid"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaveType  string    `gorm:"type:varchar(50);not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	TotalDays  int       `gorm:"not null"`
	Reason     string    `gorm:"type:text"`
	Status     string    `gorm:"type:varchar(20);not null;default:'PENDING'"`
	DecidedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Leave) TableName() string {
	return "leaves"
}
