// README: Vehicle aggregate and status definitions.
package vehicle

import (
	"time"

	"motorpool/internal/types"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusInUse     Status = "in_use"
	StatusFrozen    Status = "frozen"
)

// FreezeReasonAccident is recorded when a completed ride reports an
// emergency event.
const FreezeReasonAccident = "accident"

type Vehicle struct {
	ID           types.ID
	PlateNumber  string
	Type         string
	FuelType     string
	Status       Status
	FreezeReason *string
	// MileageKm is monotonic non-decreasing; only AddMileage may change it.
	MileageKm    float64
	LastUsedAt   *time.Time
	LastUserID   *types.ID
	DepartmentID *types.ID
	Archived     bool
	ArchivedAt   *time.Time
}
