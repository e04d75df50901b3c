package domain

import (
	"time"

	"github.com/google/uuid"
)

// LobbyStatus represents the current state of a lobby
type LobbyStatus string

const (
	LobbyStatusWaiting    LobbyStatus = "WAITING"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusVoting     LobbyStatus = "VOTING"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
	LobbyStatusCancelled  LobbyStatus = "CANCELLED"
	LobbyStatusExpired    LobbyStatus = "EXPIRED"
)

// IsTerminal reports whether the status admits no further transitions
// except an explicit host restart (COMPLETED only).
func (s LobbyStatus) IsTerminal() bool {
	return s == LobbyStatusCompleted || s == LobbyStatusCancelled || s == LobbyStatusExpired
}

// MinPlayersToStart is the minimum participant count required to start a match
const MinPlayersToStart = 2

// Lobby represents a joinable room scoped to one match-in-progress
type Lobby struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code            string      `json:"code" gorm:"uniqueIndex;size:6;not null"`
	Game            string      `json:"game" gorm:"not null"`
	Status          LobbyStatus `json:"status" gorm:"type:varchar(20);not null;default:'WAITING';index"`
	HostID          uuid.UUID   `json:"hostId" gorm:"type:uuid;not null"`
	PhotoURL        *string     `json:"photoUrl"`
	VotingStartedAt *time.Time  `json:"votingStartedAt"`
	VotingExpiresAt *time.Time  `json:"votingExpiresAt"`
	MatchID         *uuid.UUID  `json:"matchId" gorm:"type:uuid"`
	ExpiresAt       time.Time   `json:"expiresAt" gorm:"not null"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	// Relations
	Host         *User         `json:"host,omitempty" gorm:"foreignKey:HostID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:LobbyID"`
	Match        *Match        `json:"match,omitempty" gorm:"foreignKey:MatchID"`
}

// TableName returns the table name for GORM
func (Lobby) TableName() string {
	return "lobbies"
}

// ActiveParticipant returns the active (non-left) membership for userID, or nil.
// Only meaningful when Participants was loaded with the active-only filter.
func (l *Lobby) ActiveParticipant(userID uuid.UUID) *Participant {
	for i := range l.Participants {
		if l.Participants[i].UserID == userID && l.Participants[i].LeftAt == nil {
			return &l.Participants[i]
		}
	}
	return nil
}

// IsExpired reports whether the join window has lapsed.
func (l *Lobby) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Participant represents one user's membership in one lobby. Leaving is a
// soft delete; re-joining reactivates the same row, so (lobby, user) stays
// unique across the lobby's whole lifetime.
type Participant struct {
	ID       uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LobbyID  uuid.UUID  `json:"lobbyId" gorm:"type:uuid;not null;uniqueIndex:idx_participant_lobby_user"`
	UserID   uuid.UUID  `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_participant_lobby_user"`
	IsReady  bool       `json:"isReady" gorm:"not null;default:false"`
	JoinedAt time.Time  `json:"joinedAt"`
	LeftAt   *time.Time `json:"leftAt"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lobby *Lobby `json:"-" gorm:"foreignKey:LobbyID"`
}

// TableName returns the table name for GORM
func (Participant) TableName() string {
	return "lobby_participants"
}
