package websocket

import (
	"context"

	"github.com/patified/patified-backend/internal/relay"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RunRedisBridge subscribes to every lobby channel on redis and replays each
// message into the local hub. With the bridge running, an event published by
// any instance reaches clients connected to this one. Blocks until ctx is
// cancelled.
func RunRedisBridge(ctx context.Context, client *redis.Client, hub *Hub, log *logrus.Logger) error {
	pubsub := client.PSubscribe(ctx, relay.ChannelPattern)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hub.Broadcast(msg.Channel, []byte(msg.Payload))
			log.WithField("channel", msg.Channel).Debug("relayed event to websocket hub")
		}
	}
}
