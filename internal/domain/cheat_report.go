package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CheatReport records one flagged submission from the external proof-photo
// validator: the ranking a user submitted next to the ranking the validator
// identified in the photo. The validator and its name matching live outside
// this service; we only keep the audit trail.
type CheatReport struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID            *uuid.UUID     `json:"userId" gorm:"type:uuid;index"`
	Game              string         `json:"game" gorm:"not null"`
	PhotoURL          *string        `json:"photoUrl"`
	SubmittedRanking  datatypes.JSON `json:"submittedRanking"`
	IdentifiedRanking datatypes.JSON `json:"identifiedRanking"`
	MatchID           *uuid.UUID     `json:"matchId" gorm:"type:uuid"`
	CreatedAt         time.Time      `json:"createdAt"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (CheatReport) TableName() string {
	return "cheat_reports"
}
