package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProposedRanking is one (position, occupant) entry within a versioned
// ranking proposal for a lobby. Rows are written in bulk per version and
// never mutated; a newer version supersedes the whole set.
//
// Within a (lobby, version) pair positions run contiguously from 1, and the
// unique index keeps a concurrent proposal from landing on the same version.
type ProposedRanking struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LobbyID      uuid.UUID  `json:"lobbyId" gorm:"type:uuid;not null;uniqueIndex:idx_ranking_lobby_version_pos"`
	Version      int        `json:"version" gorm:"not null;uniqueIndex:idx_ranking_lobby_version_pos"`
	Position     int        `json:"position" gorm:"not null;uniqueIndex:idx_ranking_lobby_version_pos"`
	UserID       *uuid.UUID `json:"userId" gorm:"type:uuid"`
	PlayerName   string     `json:"playerName" gorm:"not null"`
	ProposedByID uuid.UUID  `json:"proposedById" gorm:"type:uuid;not null"`
	CreatedAt    time.Time  `json:"createdAt"`

	// Relations
	User       *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProposedBy *User `json:"proposedBy,omitempty" gorm:"foreignKey:ProposedByID"`
}

// TableName returns the table name for GORM
func (ProposedRanking) TableName() string {
	return "lobby_proposed_rankings"
}
