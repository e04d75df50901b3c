package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
)

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) *rankingRepository {
	return &rankingRepository{db: db}
}

func (r *rankingRepository) CreateMany(ctx context.Context, entries []*domain.ProposedRanking) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *rankingRepository) LatestVersion(ctx context.Context, lobbyID uuid.UUID) (int, error) {
	var version *int
	err := r.db.WithContext(ctx).
		Model(&domain.ProposedRanking{}).
		Select("MAX(version)").
		Where("lobby_id = ?", lobbyID).
		Scan(&version).Error
	if err != nil {
		return 0, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (r *rankingRepository) GetByVersion(ctx context.Context, lobbyID uuid.UUID, version int) ([]*domain.ProposedRanking, error) {
	var entries []*domain.ProposedRanking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("ProposedBy").
		Where("lobby_id = ? AND version = ?", lobbyID, version).
		Order("position").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *rankingRepository) DeleteByLobby(ctx context.Context, lobbyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("lobby_id = ?", lobbyID).
		Delete(&domain.ProposedRanking{}).Error
}
