package postgres

import (
	"context"

	"github.com/patified/patified-backend/internal/domain"
	"gorm.io/gorm"
)

type cheatReportRepository struct {
	db *gorm.DB
}

func NewCheatReportRepository(db *gorm.DB) *cheatReportRepository {
	return &cheatReportRepository{db: db}
}

func (r *cheatReportRepository) Create(ctx context.Context, report *domain.CheatReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *cheatReportRepository) List(ctx context.Context) ([]*domain.CheatReport, error) {
	var reports []*domain.CheatReport
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
