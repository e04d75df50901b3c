package relay

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// Broadcaster delivers raw event bytes to the clients of a channel. The
// websocket hub satisfies this.
type Broadcaster interface {
	Broadcast(channel string, data []byte)
}

// Local hands events straight to an in-process broadcaster, skipping Redis.
// Single-instance deployments and tests use this.
type Local struct {
	hub Broadcaster
	log *logrus.Logger
}

func NewLocal(hub Broadcaster, log *logrus.Logger) *Local {
	return &Local{hub: hub, log: log}
}

func (l *Local) Publish(ctx context.Context, lobbyCode, event string, payload interface{}) {
	data, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		l.log.WithError(err).WithField("event", event).Warn("relay: failed to marshal event")
		return
	}
	l.hub.Broadcast(ChannelName(lobbyCode), data)
}
