package postgres

import (
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Lobby{},
		&domain.Participant{},
		&domain.ProposedRanking{},
		&domain.Vote{},
		&domain.Match{},
		&domain.PodiumEntry{},
		&domain.CheatReport{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:        NewUserRepository(db),
		Session:     NewSessionRepository(db),
		Lobby:       NewLobbyRepository(db),
		Participant: NewParticipantRepository(db),
		Ranking:     NewRankingRepository(db),
		Vote:        NewVoteRepository(db),
		Match:       NewMatchRepository(db),
		CheatReport: NewCheatReportRepository(db),
	}
}
