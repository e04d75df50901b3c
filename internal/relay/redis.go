package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRelay publishes lobby events to Redis pub/sub channels, one channel
// per lobby code. Every running server instance bridges those channels to
// its own websocket clients, so events reach clients regardless of which
// instance committed the transition.
type RedisRelay struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisRelay(client *redis.Client, log *logrus.Logger) *RedisRelay {
	return &RedisRelay{client: client, log: log}
}

// NewRedisClient connects and pings a Redis instance.
func NewRedisClient(addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func (r *RedisRelay) Publish(ctx context.Context, lobbyCode, event string, payload interface{}) {
	data, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		r.log.WithError(err).WithField("event", event).Warn("relay: failed to marshal event")
		return
	}

	if err := r.client.Publish(ctx, ChannelName(lobbyCode), data).Err(); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"lobby": lobbyCode,
			"event": event,
		}).Warn("relay: publish failed")
	}
}
