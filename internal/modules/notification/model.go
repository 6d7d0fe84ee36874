// README: Append-only notification records pushed over the realtime channel.
package notification

import (
	"time"

	"motorpool/internal/types"
)

type Type string

const (
	TypeSystem Type = "system"
	TypeEmail  Type = "email"
)

type Notification struct {
	ID        types.ID  `json:"id"`
	UserID    types.ID  `json:"user_id"`
	Type      Type      `json:"notification_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	SentAt    time.Time `json:"sent_at"`
	RideID    *types.ID `json:"order_id,omitempty"`
	VehicleID *types.ID `json:"vehicle_id,omitempty"`
}
