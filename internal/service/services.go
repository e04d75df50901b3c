package service

import (
	"github.com/patified/patified-backend/internal/config"
	"github.com/patified/patified-backend/internal/relay"
	"github.com/patified/patified-backend/internal/repository"
	"github.com/patified/patified-backend/internal/storage"
)

type Services struct {
	Auth      *AuthService
	Lobby     *LobbyService
	Consensus *ConsensusService
	Match     *MatchService
	Cheat     *CheatService
}

func NewServices(repos *repository.Repositories, photos storage.PhotoStore, rly relay.Relay, cfg *config.Config) *Services {
	matches := NewMatchService(repos.Match)
	return &Services{
		Auth:      NewAuthService(repos.User, repos.Session, cfg),
		Lobby:     NewLobbyService(repos, photos, rly, cfg),
		Consensus: NewConsensusService(repos, photos, matches, rly),
		Match:     matches,
		Cheat:     NewCheatService(repos),
	}
}
