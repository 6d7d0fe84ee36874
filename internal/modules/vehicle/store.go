// README: Vehicle store backed by PostgreSQL; status changes are guarded single statements.
package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motorpool/internal/types"
)

type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Get(ctx context.Context, id types.ID) (*Vehicle, error)
	ListAvailable(ctx context.Context, vehicleType string) ([]*Vehicle, error)
	// MarkInUse flips available -> in_use; returns false when the guard fails.
	MarkInUse(ctx context.Context, id types.ID, userID types.ID, at time.Time) (bool, error)
	// Release flips in_use -> available; a no-op on other states.
	Release(ctx context.Context, id types.ID) error
	Freeze(ctx context.Context, id types.ID, reason string) error
	Unfreeze(ctx context.Context, id types.ID) error
	// AddMileage adds km (>= 0) to the odometer.
	AddMileage(ctx context.Context, id types.ID, km float64) error
	Archive(ctx context.Context, id types.ID, at time.Time) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const vehicleColumns = `id, plate_number, type, fuel_type, status, freeze_reason,
       mileage_km, last_used_at, last_user_id, department_id, archived, archived_at`

func (s *PGStore) Create(ctx context.Context, v *Vehicle) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO vehicles (
			id, plate_number, type, fuel_type, status, freeze_reason,
			mileage_km, last_used_at, last_user_id, department_id, archived, archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(v.ID), v.PlateNumber, v.Type, v.FuelType, string(v.Status), v.FreezeReason,
		v.MileageKm, v.LastUsedAt, idPtr(v.LastUserID), idPtr(v.DepartmentID), v.Archived, v.ArchivedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Vehicle, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, string(id))
	return scanVehicle(row)
}

func (s *PGStore) ListAvailable(ctx context.Context, vehicleType string) ([]*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + `
		FROM vehicles WHERE status = 'available' AND NOT archived`
	args := []any{}
	if vehicleType != "" {
		query += ` AND type = $1`
		args = append(args, vehicleType)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PGStore) MarkInUse(ctx context.Context, id types.ID, userID types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles
		SET status = 'in_use', last_used_at = $1, last_user_id = $2
		WHERE id = $3 AND status = 'available'`,
		at, string(userID), string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) Release(ctx context.Context, id types.ID) error {
	_, err := s.db.Exec(ctx, `
		UPDATE vehicles SET status = 'available'
		WHERE id = $1 AND status = 'in_use'`, string(id))
	return err
}

func (s *PGStore) Freeze(ctx context.Context, id types.ID, reason string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles SET status = 'frozen', freeze_reason = $1 WHERE id = $2`,
		reason, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Unfreeze(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE vehicles SET status = 'available', freeze_reason = NULL
		WHERE id = $1 AND status = 'frozen'`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *PGStore) AddMileage(ctx context.Context, id types.ID, km float64) error {
	if km < 0 {
		return ErrValidation
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE vehicles SET mileage_km = mileage_km + $1 WHERE id = $2`,
		km, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Archive(ctx context.Context, id types.ID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE vehicles SET archived = TRUE, archived_at = $1 WHERE id = $2`,
		at, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	var lastUserID, deptID *string
	err := row.Scan(&v.ID, &v.PlateNumber, &v.Type, &v.FuelType, &v.Status, &v.FreezeReason,
		&v.MileageKm, &v.LastUsedAt, &lastUserID, &deptID, &v.Archived, &v.ArchivedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastUserID != nil {
		u := types.ID(*lastUserID)
		v.LastUserID = &u
	}
	if deptID != nil {
		d := types.ID(*deptID)
		v.DepartmentID = &d
	}
	return &v, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
