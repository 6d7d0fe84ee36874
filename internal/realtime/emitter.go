// README: Realtime push channel contract and room naming.
package realtime

import (
	"context"

	"motorpool/internal/types"
)

// Emitter pushes an event to everyone joined to a room. Delivery is
// at-most-once and advisory; callers must treat failures as non-fatal.
type Emitter interface {
	Emit(ctx context.Context, event string, room string, payload any) error
}

func UserRoom(id types.ID) string {
	return "user:" + string(id)
}

func DepartmentRoom(id types.ID) string {
	return "dept:" + string(id)
}

// Envelope is the wire shape published on the channel.
type Envelope struct {
	Event   string `json:"event"`
	Room    string `json:"room"`
	Payload any    `json:"payload"`
}
