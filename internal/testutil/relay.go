package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/patified/patified-backend/internal/relay"
)

// RecordedEvent is one event captured by the recorder relay.
type RecordedEvent struct {
	LobbyCode string
	Name      string
	Payload   interface{}
}

// RecorderRelay captures every published event for assertions and optionally
// forwards them to a broadcaster, so websocket tests see real traffic.
type RecorderRelay struct {
	mu     sync.Mutex
	events []RecordedEvent
	hub    relay.Broadcaster
}

func NewRecorderRelay(hub relay.Broadcaster) *RecorderRelay {
	return &RecorderRelay{hub: hub}
}

func (r *RecorderRelay) Publish(ctx context.Context, lobbyCode, event string, payload interface{}) {
	r.mu.Lock()
	r.events = append(r.events, RecordedEvent{LobbyCode: lobbyCode, Name: event, Payload: payload})
	r.mu.Unlock()

	if r.hub != nil {
		data, err := json.Marshal(relay.Event{Name: event, Payload: payload})
		if err == nil {
			r.hub.Broadcast(relay.ChannelName(lobbyCode), data)
		}
	}
}

// Events returns a copy of everything published so far.
func (r *RecorderRelay) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

// EventNames returns the names of all captured events, in publish order.
func (r *RecorderRelay) EventNames() []string {
	events := r.Events()
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

// Reset discards captured events.
func (r *RecorderRelay) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
