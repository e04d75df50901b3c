package domain

import (
	"time"

	"github.com/google/uuid"
)

// Match is the permanent record created once a lobby reaches consensus
type Match struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Game        string    `json:"game" gorm:"not null"`
	PhotoURL    *string   `json:"photoUrl"`
	CreatedByID uuid.UUID `json:"createdById" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"createdAt"`

	// Relations
	CreatedBy *User         `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Podium    []PodiumEntry `json:"podium,omitempty" gorm:"foreignKey:MatchID"`
}

// TableName returns the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// PodiumEntry is one finisher row of a match. Guest occupants have a nil
// UserID and only a free-text name.
type PodiumEntry struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MatchID    uuid.UUID  `json:"matchId" gorm:"type:uuid;not null;index"`
	Position   int        `json:"position" gorm:"not null"`
	UserID     *uuid.UUID `json:"userId" gorm:"type:uuid"`
	PlayerName string     `json:"playerName" gorm:"not null"`

	// Relations
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Match *Match `json:"-" gorm:"foreignKey:MatchID"`
}

// TableName returns the table name for GORM
func (PodiumEntry) TableName() string {
	return "match_podium_entries"
}
