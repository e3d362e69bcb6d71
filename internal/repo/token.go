package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dmarkhas/orderflow/internal/models"
)

func (r *Repo) CreateAuthToken(ctx context.Context, t *models.AuthToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *Repo) FindByRefreshToken(ctx context.Context, refreshToken string, userID uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := r.DB.WithContext(ctx).
		Where("refresh_token = ? AND user_id = ?", refreshToken, userID).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *Repo) DeleteAuthToken(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.AuthToken{}, id).Error
}

// RotateAuthToken replaces one pair with the next inside a single
// transaction. The delete must hit exactly the old row: two concurrent
// rotations of the same refresh token cannot both succeed.
func (r *Repo) RotateAuthToken(ctx context.Context, oldID uint, next *models.AuthToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.AuthToken{}, oldID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotFound
		}
		return tx.Create(next).Error
	})
}

// DeleteTokensByUser revokes every session of the user. Deleting zero
// rows is fine, logout is idempotent.
func (r *Repo) DeleteTokensByUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AuthToken{}).Error
}

// DeleteExpiredTokens removes rows whose access AND refresh expiries are
// both in the past, and reports how many went away.
func (r *Repo) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).
		Where("access_expires_at < ? AND refresh_expires_at < ?", now, now).
		Delete(&models.AuthToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
