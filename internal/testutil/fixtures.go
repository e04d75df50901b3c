package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName   string
	password      string
	steamUsername *string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithSteamUsername sets the Steam username
func (b *UserBuilder) WithSteamUsername(name string) *UserBuilder {
	b.steamUsername = &name
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:            uuid.New(),
		DisplayName:   b.displayName,
		PasswordHash:  string(hashedPassword),
		SteamUsername: b.steamUsername,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// LobbyBuilder creates test lobbies with a builder pattern
type LobbyBuilder struct {
	host      *domain.User
	game      string
	status    domain.LobbyStatus
	code      string
	expiresAt time.Time
	photoURL  *string
	members   []*domain.User
}

// NewLobbyBuilder creates a new LobbyBuilder with default values
func NewLobbyBuilder() *LobbyBuilder {
	return &LobbyBuilder{
		game:      "Mario Kart",
		status:    domain.LobbyStatusWaiting,
		code:      generateLobbyCode(),
		expiresAt: time.Now().Add(2 * time.Hour),
	}
}

// WithHost sets the lobby host
func (b *LobbyBuilder) WithHost(user *domain.User) *LobbyBuilder {
	b.host = user
	return b
}

// WithGame sets the game name
func (b *LobbyBuilder) WithGame(game string) *LobbyBuilder {
	b.game = game
	return b
}

// WithStatus sets the lobby status
func (b *LobbyBuilder) WithStatus(status domain.LobbyStatus) *LobbyBuilder {
	b.status = status
	return b
}

// WithCode sets the join code
func (b *LobbyBuilder) WithCode(code string) *LobbyBuilder {
	b.code = code
	return b
}

// WithExpiresAt sets the join window horizon
func (b *LobbyBuilder) WithExpiresAt(expiresAt time.Time) *LobbyBuilder {
	b.expiresAt = expiresAt
	return b
}

// WithPhotoURL sets the proof photo reference
func (b *LobbyBuilder) WithPhotoURL(ref string) *LobbyBuilder {
	b.photoURL = &ref
	return b
}

// WithMembers adds active participants besides the host
func (b *LobbyBuilder) WithMembers(users ...*domain.User) *LobbyBuilder {
	b.members = append(b.members, users...)
	return b
}

// Build creates the lobby with its participants in the database
func (b *LobbyBuilder) Build(t *testing.T, db *gorm.DB) *domain.Lobby {
	t.Helper()

	if b.host == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.host = user
	}

	lobby := &domain.Lobby{
		ID:        uuid.New(),
		Code:      b.code,
		Game:      b.game,
		Status:    b.status,
		HostID:    b.host.ID,
		PhotoURL:  b.photoURL,
		ExpiresAt: b.expiresAt,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if b.status == domain.LobbyStatusVoting {
		now := time.Now()
		expires := now.Add(30 * time.Minute)
		lobby.VotingStartedAt = &now
		lobby.VotingExpiresAt = &expires
	}

	if err := db.Create(lobby).Error; err != nil {
		t.Fatalf("failed to create lobby: %v", err)
	}

	joined := time.Now()
	participants := []*domain.User{b.host}
	participants = append(participants, b.members...)
	for i, user := range participants {
		p := &domain.Participant{
			ID:       uuid.New(),
			LobbyID:  lobby.ID,
			UserID:   user.ID,
			JoinedAt: joined.Add(time.Duration(i) * time.Second),
		}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("failed to create participant: %v", err)
		}
	}

	return lobby
}

func generateLobbyCode() string {
	// Codes are six chars from the lobby alphabet; a uuid prefix mapped onto
	// it is unique enough for tests.
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	id := uuid.New()
	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		code[i] = alphabet[int(id[i])%len(alphabet)]
	}
	return string(code)
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
