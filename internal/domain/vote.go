package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteStatus represents a participant's disposition toward a proposal version
type VoteStatus string

const (
	VoteStatusApproved VoteStatus = "APPROVED"
	VoteStatusRejected VoteStatus = "REJECTED"
)

// Vote is one participant's vote on one ranking version. Re-voting
// overwrites in place; votes below the latest version are purged when a new
// version is proposed.
type Vote struct {
	ID      uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LobbyID uuid.UUID  `json:"lobbyId" gorm:"type:uuid;not null;uniqueIndex:idx_vote_lobby_user_version"`
	UserID  uuid.UUID  `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_vote_lobby_user_version"`
	Version int        `json:"version" gorm:"not null;uniqueIndex:idx_vote_lobby_user_version"`
	Status  VoteStatus `json:"status" gorm:"type:varchar(10);not null"`
	VotedAt time.Time  `json:"votedAt"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lobby *Lobby `json:"-" gorm:"foreignKey:LobbyID"`
}

// TableName returns the table name for GORM
func (Vote) TableName() string {
	return "lobby_votes"
}
