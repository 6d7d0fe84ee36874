// README: Ride aggregate, status definitions and the transition table.
package ride

import (
	"time"

	"motorpool/internal/types"
)

type Status string

const (
	StatusNone        Status = "none"
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "cancelled_due_to_no_show"
	StatusVehicleGone Status = "cancelled_vehicle_unavailable"
)

type Type string

const (
	TypeAdministrative Type = "administrative"
	TypeOperational    Type = "operational"
)

// ExtendedRideThreshold is the window length from which an extended-ride
// reason becomes mandatory.
const ExtendedRideThreshold = 4 * 24 * time.Hour

type Ride struct {
	ID          types.ID
	RequesterID types.ID
	// OverrideUserID substitutes the actual rider; it takes precedence over
	// RequesterID wherever "the rider" matters (no-show attribution,
	// notifications, mileage attribution).
	OverrideUserID    *types.ID
	VehicleID         *types.ID
	Type              Type
	Window            types.Window
	StartLocation     string
	StopLocation      string
	EstimatedKm       float64
	ActualKm          *float64
	Status            Status
	StatusVersion     int
	SubmittedAt       time.Time
	ActualPickupAt    *time.Time
	CompletionDate    *time.Time
	EmergencyEvent    *string
	ExtendedReason    *string
	FourByFourReason  *string
	CancelReason      *string
	FeedbackSubmitted bool
}

// Rider resolves who actually takes the ride.
func (r *Ride) Rider() types.ID {
	if r.OverrideUserID != nil && *r.OverrideUserID != "" {
		return *r.OverrideUserID
	}
	return r.RequesterID
}

// IsActive reports whether the ride still occupies its vehicle's window.
func (s Status) IsActive() bool {
	return s == StatusApproved || s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled, StatusNoShow, StatusVehicleGone:
		return true
	}
	return false
}

type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// NoShowEvent is an append-only record of a rider failing to pick up.
type NoShowEvent struct {
	ID         types.ID
	UserID     types.ID
	RideID     types.ID
	OccurredAt time.Time
}

// AllowedTransitions represents the ride state flow as code. Terminal
// states have no outgoing edges.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusApproved, StatusRejected, StatusCancelled, StatusNoShow, StatusVehicleGone},
	StatusApproved:   {StatusInProgress, StatusCancelled, StatusNoShow, StatusVehicleGone},
	StatusInProgress: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
