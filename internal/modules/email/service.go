// README: Transactional email delivery with bounded retry and realtime status events.
package email

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"motorpool/internal/realtime"
	"motorpool/internal/types"
)

type Kind string

const (
	KindRideCreated   Kind = "ride_created"
	KindRideApproved  Kind = "ride_approved"
	KindRideRejected  Kind = "ride_rejected"
	KindRideCompleted Kind = "ride_completed"
	KindRideCancelled Kind = "ride_cancelled"
	KindPasswordReset Kind = "password_reset"
)

const (
	maxAttempts = 3
	baseBackoff = 2 * time.Second
	maxBackoff  = 10 * time.Second
)

type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "pending"
	StatusAttempting DeliveryStatus = "attempting"
	StatusSent       DeliveryStatus = "sent"
	StatusFailed     DeliveryStatus = "failed"
)

// StatusEvent is the payload pushed to the recipient's room as a send
// progresses.
type StatusEvent struct {
	UserID       types.ID       `json:"user_id"`
	EmailType    Kind           `json:"email_type"`
	Status       DeliveryStatus `json:"status"`
	Message      string         `json:"message"`
	Timestamp    time.Time      `json:"timestamp"`
	IdentifierID *types.ID      `json:"identifier_id,omitempty"`
}

type Recipient struct {
	UserID types.ID
	Name   string
	Email  string
}

type Service struct {
	transport Transport
	renderer  Renderer
	emitter   realtime.Emitter
	log       *logrus.Logger

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(time.Duration)
}

func NewService(transport Transport, renderer Renderer, emitter realtime.Emitter, log *logrus.Logger) *Service {
	return &Service{
		transport: transport,
		renderer:  renderer,
		emitter:   emitter,
		log:       log,
		sleep:     time.Sleep,
	}
}

// Send delivers one message. With retry it attempts up to three times with
// exponential backoff (base 2s, cap 10s), emitting an "attempting" event
// before each try and a terminal sent/failed event afterwards. Without retry
// it is a single latency-sensitive attempt. The boolean result is advisory:
// callers never fail their own operation on a false return.
func (s *Service) Send(ctx context.Context, kind Kind, rcpt Recipient, data map[string]any, rideID *types.ID, retry bool) bool {
	body, err := s.renderer.Render(kind, data)
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Error("email render failed")
		s.emitStatus(ctx, kind, rcpt, StatusFailed, "template error", rideID)
		return false
	}

	attempts := 1
	if retry {
		attempts = maxAttempts
	}
	for i := 0; i < attempts; i++ {
		if i > 0 {
			s.sleep(backoff(i))
		}
		s.emitStatus(ctx, kind, rcpt, StatusAttempting, "sending", rideID)
		if err := s.transport.Send(Subject(kind), body, []string{rcpt.Email}); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"kind": kind, "user_id": rcpt.UserID, "attempt": i + 1,
			}).Warn("email send failed")
			continue
		}
		s.emitStatus(ctx, kind, rcpt, StatusSent, "delivered", rideID)
		return true
	}
	s.emitStatus(ctx, kind, rcpt, StatusFailed, "delivery failed", rideID)
	return false
}

// SendAsync dispatches a retrying send in the background; the caller's
// operation completes regardless of the outcome.
func (s *Service) SendAsync(kind Kind, rcpt Recipient, data map[string]any, rideID *types.ID) {
	go s.Send(context.Background(), kind, rcpt, data, rideID, true)
}

func (s *Service) emitStatus(ctx context.Context, kind Kind, rcpt Recipient, status DeliveryStatus, msg string, rideID *types.ID) {
	ev := StatusEvent{
		UserID:       rcpt.UserID,
		EmailType:    kind,
		Status:       status,
		Message:      msg,
		Timestamp:    time.Now(),
		IdentifierID: rideID,
	}
	if err := s.emitter.Emit(ctx, "email_status", realtime.UserRoom(rcpt.UserID), ev); err != nil {
		s.log.WithError(err).Debug("email status push failed")
	}
}

// backoff doubles from the base per extra attempt and is capped.
func backoff(attempt int) time.Duration {
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
