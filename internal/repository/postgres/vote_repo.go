package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *voteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *domain.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "lobby_id"},
				{Name: "user_id"},
				{Name: "version"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "voted_at"}),
		}).
		Create(vote).Error
}

func (r *voteRepository) GetByVersion(ctx context.Context, lobbyID uuid.UUID, version int) ([]*domain.Vote, error) {
	var votes []*domain.Vote
	err := r.db.WithContext(ctx).
		Where("lobby_id = ? AND version = ?", lobbyID, version).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepository) DeleteBelowVersion(ctx context.Context, lobbyID uuid.UUID, version int) error {
	return r.db.WithContext(ctx).
		Where("lobby_id = ? AND version < ?", lobbyID, version).
		Delete(&domain.Vote{}).Error
}

func (r *voteRepository) DeleteByLobby(ctx context.Context, lobbyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("lobby_id = ?", lobbyID).
		Delete(&domain.Vote{}).Error
}
