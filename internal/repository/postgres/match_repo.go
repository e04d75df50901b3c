package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
)

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *matchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	// Podium rows ride along through the association.
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var match domain.Match
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Podium", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Podium.User").
		First(&match, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) List(ctx context.Context, limit, offset int) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Podium", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Podium.User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *matchRepository) ListPodiumEntries(ctx context.Context) ([]*domain.PodiumEntry, error) {
	var entries []*domain.PodiumEntry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IS NOT NULL").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
