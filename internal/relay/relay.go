// Package relay fans lifecycle and consensus events out to the clients of a
// lobby. Publishing is fire-and-forget relative to the state that was just
// committed: a relay failure is logged, never returned, and never rolls back
// a transition.
package relay

import (
	"context"
	"strings"
)

// Event is the wire shape carried on a lobby channel. Clients re-fetch the
// full lobby on receipt, so payloads are hints, not authoritative state.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Event names emitted by the lobby engines.
const (
	EventParticipantJoined = "participant_joined"
	EventParticipantReady  = "participant_ready"
	EventParticipantLeft   = "participant_left"
	EventHostChanged       = "host_changed"
	EventLobbyStarted      = "lobby_started"
	EventPhotoUploaded     = "photo_uploaded"
	EventVotingStarted     = "voting_started"
	EventRankingProposed   = "ranking_proposed"
	EventVoteCast          = "vote_cast"
	EventVotingCompleted   = "voting_completed"
	EventLobbyCancelled    = "lobby_cancelled"
	EventLobbyRestarted    = "lobby_restarted"
)

type Relay interface {
	// Publish delivers an event to everyone watching the lobby. Best-effort,
	// at-least-once; must be called only after the transition committed.
	Publish(ctx context.Context, lobbyCode, event string, payload interface{})
}

// ChannelPattern matches every lobby channel. The websocket bridge
// pattern-subscribes with it to mirror all redis traffic locally.
const ChannelPattern = "lobby:*"

// ChannelName returns the pub/sub channel for a lobby code.
func ChannelName(code string) string {
	return "lobby:" + strings.ToUpper(code)
}

// Nop discards all events. Used when no relay backend is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, lobbyCode, event string, payload interface{}) {}
