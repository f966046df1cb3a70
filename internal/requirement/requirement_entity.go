package requirement

import (
	"time"

	"github.com/google/uuid"
)

// WorkHourRequirement is one version of an employee's daily required hours.
// Versions never overlap: creating a new one closes the prior version's
// EffectiveTo, and a nil EffectiveTo marks the current version. Past
// attendance records keep the snapshot they were created with, so editing a
// requirement never rewrites history.
type WorkHourRequirement struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_requirements_employee_effective"`
	DailyHours    float64    `gorm:"type:numeric(4,2);not null"`
	EffectiveFrom time.Time  `gorm:"type:date;not null;index:idx_requirements_employee_effective"`
	EffectiveTo   *time.Time `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WorkHourRequirement) TableName() string {
	return "work_hour_requirements"
}
