// README: Ride store backed by PostgreSQL; transitions are single-statement optimistic CAS.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motorpool/internal/types"
)

// StatusPatch carries the fields a transition may set alongside the status
// change. Nil fields are left untouched.
type StatusPatch struct {
	PickupAt       *time.Time
	ActualKm       *float64
	CompletionDate *time.Time
	EmergencyEvent *string
	CancelReason   *string
}

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	// UpdateStatus performs the compare-and-swap that serializes all
	// transitions on one ride: it succeeds only when both the expected
	// status and the status version still hold.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error)
	// Replace persists an edit of the ride's mutable fields, guarded by the
	// same optimistic version check.
	Replace(ctx context.Context, r *Ride) (bool, error)
	ListActiveByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error)
	// ListOpenByVehicle also includes pending rides, for vehicle-withdrawal
	// fan-out.
	ListOpenByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]*Ride, error)
	// ListNoShowCandidates returns pending/approved rides whose start passed
	// the cutoff without a recorded pickup.
	ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]*Ride, error)
	ListCompletedInMonth(ctx context.Context, year, month int) ([]*Ride, error)
	AppendEvent(ctx context.Context, e *Event) error
	InsertNoShow(ctx context.Context, e *NoShowEvent) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const rideColumns = `id, requester_id, override_user_id, vehicle_id, type,
       start_at, end_at, start_location, stop_location,
       estimated_km, actual_km, status, status_version, submitted_at,
       actual_pickup_at, completion_date, emergency_event,
       extended_reason, four_by_four_reason, cancel_reason, feedback_submitted`

func (s *PGStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, requester_id, override_user_id, vehicle_id, type,
			start_at, end_at, start_location, stop_location,
			estimated_km, actual_km, status, status_version, submitted_at,
			actual_pickup_at, completion_date, emergency_event,
			extended_reason, four_by_four_reason, cancel_reason, feedback_submitted
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)`,
		string(r.ID), string(r.RequesterID), idPtr(r.OverrideUserID), idPtr(r.VehicleID), string(r.Type),
		r.Window.Start, r.Window.End, r.StartLocation, r.StopLocation,
		r.EstimatedKm, r.ActualKm, string(r.Status), r.StatusVersion, r.SubmittedAt,
		r.ActualPickupAt, r.CompletionDate, r.EmergencyEvent,
		r.ExtendedReason, r.FourByFourReason, r.CancelReason, r.FeedbackSubmitted,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	return scanRide(row)
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, patch StatusPatch) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    status_version = status_version + 1,
		    actual_pickup_at = COALESCE($2, actual_pickup_at),
		    actual_km = COALESCE($3, actual_km),
		    completion_date = COALESCE($4, completion_date),
		    emergency_event = COALESCE($5, emergency_event),
		    cancel_reason = COALESCE($6, cancel_reason)
		WHERE id = $7 AND status = $8 AND status_version = $9`,
		string(to),
		patch.PickupAt, patch.ActualKm, patch.CompletionDate, patch.EmergencyEvent, patch.CancelReason,
		string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Replace(ctx context.Context, r *Ride) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET override_user_id = $1, vehicle_id = $2, type = $3,
		    start_at = $4, end_at = $5, start_location = $6, stop_location = $7,
		    estimated_km = $8, status = $9, status_version = status_version + 1,
		    extended_reason = $10, four_by_four_reason = $11, feedback_submitted = $12
		WHERE id = $13 AND status_version = $14`,
		idPtr(r.OverrideUserID), idPtr(r.VehicleID), string(r.Type),
		r.Window.Start, r.Window.End, r.StartLocation, r.StopLocation,
		r.EstimatedKm, string(r.Status),
		r.ExtendedReason, r.FourByFourReason, r.FeedbackSubmitted,
		string(r.ID), r.StatusVersion,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) ListActiveByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE vehicle_id = $1 AND status IN ('approved','in_progress')`,
		string(vehicleID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PGStore) ListOpenByVehicle(ctx context.Context, vehicleID types.ID) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE vehicle_id = $1 AND status IN ('pending','approved','in_progress')`,
		string(vehicleID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PGStore) ListByStatus(ctx context.Context, statuses ...Status) ([]*Ride, error) {
	vals := make([]string, len(statuses))
	for i, st := range statuses {
		vals[i] = string(st)
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE status = ANY($1)`, vals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PGStore) ListNoShowCandidates(ctx context.Context, cutoff time.Time) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE status IN ('pending','approved')
		  AND start_at < $1
		  AND actual_pickup_at IS NULL`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PGStore) ListCompletedInMonth(ctx context.Context, year, month int) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+rideColumns+` FROM rides
		WHERE status = 'completed'
		  AND EXTRACT(YEAR FROM completion_date) = $1
		  AND EXTRACT(MONTH FROM completion_date) = $2`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_state_events (ride_id, from_status, to_status, actor_type, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID), string(e.FromStatus), string(e.ToStatus),
		e.ActorType, idPtr(e.ActorID), e.CreatedAt,
	)
	return err
}

func (s *PGStore) InsertNoShow(ctx context.Context, e *NoShowEvent) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO no_show_events (id, user_id, ride_id, occurred_at)
		VALUES ($1, $2, $3, $4)`,
		string(e.ID), string(e.UserID), string(e.RideID), e.OccurredAt,
	)
	return err
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var overrideID, vehicleID *string
	err := row.Scan(
		&r.ID, &r.RequesterID, &overrideID, &vehicleID, &r.Type,
		&r.Window.Start, &r.Window.End, &r.StartLocation, &r.StopLocation,
		&r.EstimatedKm, &r.ActualKm, &r.Status, &r.StatusVersion, &r.SubmittedAt,
		&r.ActualPickupAt, &r.CompletionDate, &r.EmergencyEvent,
		&r.ExtendedReason, &r.FourByFourReason, &r.CancelReason, &r.FeedbackSubmitted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if overrideID != nil {
		v := types.ID(*overrideID)
		r.OverrideUserID = &v
	}
	if vehicleID != nil {
		v := types.ID(*vehicleID)
		r.VehicleID = &v
	}
	return &r, nil
}

func scanRides(rows pgx.Rows) ([]*Ride, error) {
	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
