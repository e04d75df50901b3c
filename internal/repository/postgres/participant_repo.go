package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
)

type participantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *participantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *participantRepository) GetByLobbyAndUser(ctx context.Context, lobbyID, userID uuid.UUID) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("lobby_id = ? AND user_id = ?", lobbyID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) GetActiveByLobby(ctx context.Context, lobbyID uuid.UUID) ([]*domain.Participant, error) {
	var participants []*domain.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("lobby_id = ? AND left_at IS NULL", lobbyID).
		Order("joined_at").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *participantRepository) CountActiveByLobby(ctx context.Context, lobbyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("lobby_id = ? AND left_at IS NULL", lobbyID).
		Count(&count).Error
	return count, err
}

func (r *participantRepository) Update(ctx context.Context, p *domain.Participant) error {
	// Save would skip zero values for left_at/is_ready through a map-less
	// update; select the mutable columns explicitly.
	return r.db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("id = ?", p.ID).
		Select("is_ready", "left_at").
		Updates(map[string]interface{}{
			"is_ready": p.IsReady,
			"left_at":  p.LeftAt,
		}).Error
}

func (r *participantRepository) ResetReady(ctx context.Context, lobbyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("lobby_id = ? AND left_at IS NULL", lobbyID).
		Update("is_ready", false).Error
}
