// README: Notification store backed by PostgreSQL.
package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"motorpool/internal/types"
)

type Store interface {
	Insert(ctx context.Context, n *Notification) error
	// ListByUser returns the user's notifications in descending sent_at order.
	ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Notification, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, n *Notification) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, sent_at, ride_id, vehicle_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(n.ID), string(n.UserID), string(n.Type), n.Title, n.Message, n.SentAt,
		idPtr(n.RideID), idPtr(n.VehicleID),
	)
	return err
}

func (s *PGStore) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, title, message, sent_at, ride_id, vehicle_id
		FROM notifications
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2`, string(userID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		var rideID, vehicleID *string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.SentAt,
			&rideID, &vehicleID); err != nil {
			return nil, err
		}
		if rideID != nil {
			v := types.ID(*rideID)
			n.RideID = &v
		}
		if vehicleID != nil {
			v := types.ID(*vehicleID)
			n.VehicleID = &v
		}
		out = append(out, &n)
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
