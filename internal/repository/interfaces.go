package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	IncrementCheatAttempts(ctx context.Context, id uuid.UUID) error
	ListWithCheatAttempts(ctx context.Context) ([]*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type LobbyRepository interface {
	Create(ctx context.Context, lobby *domain.Lobby) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error)
	GetByCode(ctx context.Context, code string) (*domain.Lobby, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Lobby, error)
	// UpdateStatus applies patch only while the lobby still holds
	// expectedStatus; a lost race returns domain.ErrConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus domain.LobbyStatus, patch map[string]interface{}) error
	SetHost(ctx context.Context, id, hostID uuid.UUID) error
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *domain.Participant) error
	// GetByLobbyAndUser returns the membership row whether or not the user
	// has left; callers inspect LeftAt.
	GetByLobbyAndUser(ctx context.Context, lobbyID, userID uuid.UUID) (*domain.Participant, error)
	GetActiveByLobby(ctx context.Context, lobbyID uuid.UUID) ([]*domain.Participant, error)
	CountActiveByLobby(ctx context.Context, lobbyID uuid.UUID) (int64, error)
	Update(ctx context.Context, p *domain.Participant) error
	ResetReady(ctx context.Context, lobbyID uuid.UUID) error
}

type RankingRepository interface {
	CreateMany(ctx context.Context, entries []*domain.ProposedRanking) error
	LatestVersion(ctx context.Context, lobbyID uuid.UUID) (int, error)
	GetByVersion(ctx context.Context, lobbyID uuid.UUID, version int) ([]*domain.ProposedRanking, error)
	DeleteByLobby(ctx context.Context, lobbyID uuid.UUID) error
}

type VoteRepository interface {
	// Upsert inserts or overwrites the (lobby, user, version) vote.
	Upsert(ctx context.Context, vote *domain.Vote) error
	GetByVersion(ctx context.Context, lobbyID uuid.UUID, version int) ([]*domain.Vote, error)
	DeleteBelowVersion(ctx context.Context, lobbyID uuid.UUID, version int) error
	DeleteByLobby(ctx context.Context, lobbyID uuid.UUID) error
}

type MatchRepository interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Match, error)
	// ListPodiumEntries returns every podium row tied to a registered user,
	// with the user preloaded, for leaderboard aggregation.
	ListPodiumEntries(ctx context.Context) ([]*domain.PodiumEntry, error)
}

type CheatReportRepository interface {
	Create(ctx context.Context, report *domain.CheatReport) error
	List(ctx context.Context) ([]*domain.CheatReport, error)
}

type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	Lobby       LobbyRepository
	Participant ParticipantRepository
	Ranking     RankingRepository
	Vote        VoteRepository
	Match       MatchRepository
	CheatReport CheatReportRepository
}
