package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
)

type lobbyRepository struct {
	db *gorm.DB
}

func NewLobbyRepository(db *gorm.DB) *lobbyRepository {
	return &lobbyRepository{db: db}
}

// withIncludes preloads the full lobby projection: host, active
// participants in join order, and the match if one was recorded.
func (r *lobbyRepository) withIncludes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Host").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Where("left_at IS NULL").Order("joined_at")
		}).
		Preload("Participants.User").
		Preload("Match").
		Preload("Match.Podium")
}

func (r *lobbyRepository) Create(ctx context.Context, lobby *domain.Lobby) error {
	return r.db.WithContext(ctx).Create(lobby).Error
}

func (r *lobbyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lobby, error) {
	var lobby domain.Lobby
	err := r.withIncludes(ctx).First(&lobby, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (r *lobbyRepository) GetByCode(ctx context.Context, code string) (*domain.Lobby, error) {
	var lobby domain.Lobby
	err := r.withIncludes(ctx).First(&lobby, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &lobby, nil
}

func (r *lobbyRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Lobby{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *lobbyRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Lobby, error) {
	var lobbies []*domain.Lobby
	err := r.withIncludes(ctx).
		Joins("JOIN lobby_participants ON lobby_participants.lobby_id = lobbies.id").
		Where("lobby_participants.user_id = ? AND lobby_participants.left_at IS NULL", userID).
		Where("lobbies.status IN ?", []domain.LobbyStatus{
			domain.LobbyStatusWaiting,
			domain.LobbyStatusInProgress,
			domain.LobbyStatusVoting,
		}).
		Order("lobbies.updated_at DESC").
		Find(&lobbies).Error
	if err != nil {
		return nil, err
	}
	return lobbies, nil
}

func (r *lobbyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expectedStatus domain.LobbyStatus, patch map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Lobby{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *lobbyRepository) SetHost(ctx context.Context, id, hostID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Lobby{}).
		Where("id = ?", id).
		Update("host_id", hostID).Error
}
