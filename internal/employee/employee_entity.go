package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee is the directory entry the attendance core resolves against:
// MachineUserID is the badge identity the biometric device reports.
type Employee struct {
	ID            uuid.UUID
	FullName      string
	Email         string
	MachineUserID string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
