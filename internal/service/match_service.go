package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"github.com/patified/patified-backend/internal/repository"
	"gorm.io/gorm"
)

// MatchService is the match recorder: it turns a finalized ranking into the
// permanent match/podium record, and aggregates podiums into the leaderboard.
type MatchService struct {
	matchRepo repository.MatchRepository
}

func NewMatchService(matchRepo repository.MatchRepository) *MatchService {
	return &MatchService{matchRepo: matchRepo}
}

// RecordMatch persists a match with its podium, copied from the winning
// ranking version's entries.
func (s *MatchService) RecordMatch(ctx context.Context, game string, photoURL *string, createdBy uuid.UUID, entries []*domain.ProposedRanking) (*domain.Match, error) {
	match := &domain.Match{
		ID:          uuid.New(),
		Game:        game,
		PhotoURL:    photoURL,
		CreatedByID: createdBy,
		CreatedAt:   time.Now(),
	}
	for _, e := range entries {
		match.Podium = append(match.Podium, domain.PodiumEntry{
			ID:         uuid.New(),
			MatchID:    match.ID,
			Position:   e.Position,
			UserID:     e.UserID,
			PlayerName: e.PlayerName,
		})
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *MatchService) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *MatchService) ListMatches(ctx context.Context, limit, offset int) ([]*domain.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.matchRepo.List(ctx, limit, offset)
}

// Leaderboard scoring: +3 points per first place, -1 point per podium
// appearance anywhere below first. Guests never reach the leaderboard;
// scoring only counts entries tied to registered users.
const (
	pointsPerWin        = 3
	pointsPerLowerPlace = -1
)

type LeaderboardRow struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Wins        int       `json:"wins"`
	LowerPlaces int       `json:"lowerPlaces"`
	Points      int       `json:"points"`
}

// Leaderboard aggregates every recorded podium into ranked standings.
func (s *MatchService) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	entries, err := s.matchRepo.ListPodiumEntries(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*LeaderboardRow)
	for _, e := range entries {
		if e.UserID == nil {
			continue
		}
		row, ok := byUser[*e.UserID]
		if !ok {
			row = &LeaderboardRow{UserID: *e.UserID, Name: e.PlayerName}
			if e.User != nil {
				row.Name = e.User.PodiumName()
			}
			byUser[*e.UserID] = row
		}
		if e.Position == 1 {
			row.Wins++
		} else {
			row.LowerPlaces++
		}
	}

	rows := make([]LeaderboardRow, 0, len(byUser))
	for _, row := range byUser {
		row.Points = pointsPerWin*row.Wins + pointsPerLowerPlace*row.LowerPlaces
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
