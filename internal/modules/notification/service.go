// README: Notification fan-out: persist first, then best-effort realtime push.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"motorpool/internal/realtime"
	"motorpool/internal/types"
)

const eventName = "notification"

type Service struct {
	store   Store
	emitter realtime.Emitter
	log     *logrus.Logger
}

func NewService(store Store, emitter realtime.Emitter, log *logrus.Logger) *Service {
	return &Service{store: store, emitter: emitter, log: log}
}

// Request describes a notification to a single user. DepartmentID, when set,
// additionally pushes to the department room for department-wide events.
type Request struct {
	UserID       types.ID
	Title        string
	Message      string
	RideID       *types.ID
	VehicleID    *types.ID
	DepartmentID *types.ID
}

// Notify persists the record and then pushes it over the realtime channel.
// The push is at-most-once and advisory: a failure is logged and the
// persisted record remains the source of truth.
func (s *Service) Notify(ctx context.Context, req Request) (*Notification, error) {
	n := &Notification{
		ID:        types.ID(uuid.NewString()),
		UserID:    req.UserID,
		Type:      TypeSystem,
		Title:     req.Title,
		Message:   req.Message,
		SentAt:    time.Now(),
		RideID:    req.RideID,
		VehicleID: req.VehicleID,
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return nil, err
	}

	if err := s.emitter.Emit(ctx, eventName, realtime.UserRoom(req.UserID), n); err != nil {
		s.log.WithError(err).WithField("user_id", req.UserID).Warn("realtime push failed")
	}
	if req.DepartmentID != nil {
		if err := s.emitter.Emit(ctx, eventName, realtime.DepartmentRoom(*req.DepartmentID), n); err != nil {
			s.log.WithError(err).WithField("department_id", *req.DepartmentID).Warn("realtime push failed")
		}
	}
	return n, nil
}

func (s *Service) ListByUser(ctx context.Context, userID types.ID, limit int) ([]*Notification, error) {
	return s.store.ListByUser(ctx, userID, limit)
}
