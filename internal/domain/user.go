package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	DisplayName   string    `json:"displayName" gorm:"uniqueIndex;not null"`
	SteamUsername *string   `json:"steamUsername"`
	CheatAttempts int       `json:"cheatAttempts" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PodiumName is the name shown on podiums and the leaderboard: the Steam
// username when linked, the display name otherwise.
func (u *User) PodiumName() string {
	if u.SteamUsername != nil && *u.SteamUsername != "" {
		return *u.SteamUsername
	}
	return u.DisplayName
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
