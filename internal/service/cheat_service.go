package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/repository"
	"gorm.io/datatypes"
)

// CheatService keeps the audit trail for flagged proof-photo submissions.
// Detection itself happens in an external validator; we store what it saw
// and bump the offender's counter.
type CheatService struct {
	userRepo   repository.UserRepository
	reportRepo repository.CheatReportRepository
}

func NewCheatService(repos *repository.Repositories) *CheatService {
	return &CheatService{
		userRepo:   repos.User,
		reportRepo: repos.CheatReport,
	}
}

// CheatReportInput carries one flagged submission from the validator.
type CheatReportInput struct {
	UserID            *uuid.UUID      `json:"userId"`
	Game              string          `json:"game"`
	PhotoURL          *string         `json:"photoUrl"`
	SubmittedRanking  json.RawMessage `json:"submittedRanking"`
	IdentifiedRanking json.RawMessage `json:"identifiedRanking"`
	MatchID           *uuid.UUID      `json:"matchId"`
}

// Record stores a flagged submission and, when it names a user, increments
// that user's cheat-attempt counter.
func (s *CheatService) Record(ctx context.Context, input CheatReportInput) (*domain.CheatReport, error) {
	if input.Game == "" {
		return nil, domain.ErrInvalidEntry
	}

	report := &domain.CheatReport{
		ID:                uuid.New(),
		UserID:            input.UserID,
		Game:              input.Game,
		PhotoURL:          input.PhotoURL,
		SubmittedRanking:  datatypes.JSON(input.SubmittedRanking),
		IdentifiedRanking: datatypes.JSON(input.IdentifiedRanking),
		MatchID:           input.MatchID,
		CreatedAt:         time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	if input.UserID != nil {
		if err := s.userRepo.IncrementCheatAttempts(ctx, *input.UserID); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// CheatOverview pairs the per-user counters with the raw report log.
type CheatOverview struct {
	Offenders []CheatOffender       `json:"offenders"`
	Reports   []*domain.CheatReport `json:"reports"`
}

type CheatOffender struct {
	UserID      uuid.UUID `json:"userId"`
	DisplayName string    `json:"displayName"`
	Attempts    int       `json:"attempts"`
}

// Overview lists every user with at least one recorded attempt alongside
// the full report log, newest first.
func (s *CheatService) Overview(ctx context.Context) (*CheatOverview, error) {
	users, err := s.userRepo.ListWithCheatAttempts(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	offenders := make([]CheatOffender, 0, len(users))
	for _, u := range users {
		offenders = append(offenders, CheatOffender{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Attempts:    u.CheatAttempts,
		})
	}
	return &CheatOverview{Offenders: offenders, Reports: reports}, nil
}
