package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/pkg/util"
)

func (r *GormRepo) SaveLoginHistory(ctx context.Context, userID uuid.UUID, userAgent string, at time.Time) error {
	entry := models.LoginHistory{
		UserID:    userID,
		UserAgent: userAgent,
		CreatedAt: at,
	}
	return r.DB.WithContext(ctx).Create(&entry).Error
}

// LoginHistoryPage returns the user's login history ordered newest-first.
func (r *GormRepo) LoginHistoryPage(ctx context.Context, userID uuid.UUID, page, size int) ([]models.LoginHistory, error) {
	offset, limit := util.Calculate(page, size)

	var entries []models.LoginHistory
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
