// README: Aggregate store backed by PostgreSQL upserts on (vehicle_id, year, month).
package usage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	// Add applies one ride's contribution with upsert semantics.
	Add(ctx context.Context, fact RideFact) error
	// Put overwrites an aggregate row (used by recompute).
	Put(ctx context.Context, row MonthlyVehicleUsage) error
	Get(ctx context.Context, key Key) (*MonthlyVehicleUsage, error)
	ListPeriod(ctx context.Context, year, month int) ([]MonthlyVehicleUsage, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Add(ctx context.Context, fact RideFact) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO monthly_vehicle_usage (vehicle_id, year, month, total_rides, total_km, usage_hours)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (vehicle_id, year, month) DO UPDATE SET
			total_rides = monthly_vehicle_usage.total_rides + 1,
			total_km = monthly_vehicle_usage.total_km + EXCLUDED.total_km,
			usage_hours = monthly_vehicle_usage.usage_hours + EXCLUDED.usage_hours`,
		string(fact.VehicleID), fact.Year, fact.Month, fact.Km, fact.Hours,
	)
	return err
}

func (s *PGStore) Put(ctx context.Context, row MonthlyVehicleUsage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO monthly_vehicle_usage (vehicle_id, year, month, total_rides, total_km, usage_hours)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vehicle_id, year, month) DO UPDATE SET
			total_rides = EXCLUDED.total_rides,
			total_km = EXCLUDED.total_km,
			usage_hours = EXCLUDED.usage_hours`,
		string(row.VehicleID), row.Year, row.Month, row.TotalRides, row.TotalKm, row.UsageHours,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, key Key) (*MonthlyVehicleUsage, error) {
	row := s.db.QueryRow(ctx, `
		SELECT vehicle_id, year, month, total_rides, total_km, usage_hours
		FROM monthly_vehicle_usage
		WHERE vehicle_id = $1 AND year = $2 AND month = $3`,
		string(key.VehicleID), key.Year, key.Month)
	var u MonthlyVehicleUsage
	if err := row.Scan(&u.VehicleID, &u.Year, &u.Month, &u.TotalRides, &u.TotalKm, &u.UsageHours); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) ListPeriod(ctx context.Context, year, month int) ([]MonthlyVehicleUsage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT vehicle_id, year, month, total_rides, total_km, usage_hours
		FROM monthly_vehicle_usage
		WHERE year = $1 AND month = $2
		ORDER BY vehicle_id`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyVehicleUsage
	for rows.Next() {
		var u MonthlyVehicleUsage
		if err := rows.Scan(&u.VehicleID, &u.Year, &u.Month, &u.TotalRides, &u.TotalKm, &u.UsageHours); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
