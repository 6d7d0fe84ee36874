// README: Redis pub/sub implementation of the realtime channel.
package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const channelPrefix = "realtime:"

// Publisher emits events by publishing envelopes on a per-room Redis channel.
// The websocket hub subscribes on the other side, so a committed business
// write never waits on a socket.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Emit(ctx context.Context, event, room string, payload any) error {
	data, err := json.Marshal(Envelope{Event: event, Room: room, Payload: payload})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, channelPrefix+room, data).Err()
}

// RunBridge forwards published envelopes to the hub until ctx is cancelled.
func RunBridge(ctx context.Context, rdb *redis.Client, hub *Hub, log *logrus.Logger) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			room := strings.TrimPrefix(msg.Channel, channelPrefix)
			hub.Broadcast(room, []byte(msg.Payload))
			log.WithFields(logrus.Fields{"room": room}).Debug("realtime event forwarded")
		}
	}
}
