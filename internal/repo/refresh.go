package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/avoronkov/auth_service/internal/models"
	"github.com/avoronkov/auth_service/pkg/tokens"
)

// SaveRefreshToken appends a refresh record for the user. Multiple live
// records per user are valid (one per device).
func (r *GormRepo) SaveRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	record := models.RefreshToken{
		UserID:    userID,
		TokenHash: tokens.Sha256Hex(refreshToken),
	}
	return r.DB.WithContext(ctx).Create(&record).Error
}

// RefreshTokenExists reports whether the presented token was persisted for
// this user and not yet deleted. The lookup is keyed by both user id and
// digest, so a token minted for one user can never satisfy another's check.
func (r *GormRepo) RefreshTokenExists(ctx context.Context, userID uuid.UUID, refreshToken string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ?", userID, tokens.Sha256Hex(refreshToken)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteRefreshTokens removes every refresh record for the user. Deleting
// zero rows is not an error, which makes logout idempotent.
func (r *GormRepo) DeleteRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.RefreshToken{}).Error
}
