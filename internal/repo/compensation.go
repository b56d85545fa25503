package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

func (r *GormRepo) SaveCompensationFailure(ctx context.Context, f *models.CompensationFailure) error {
	return r.DB.WithContext(ctx).Create(f).Error
}

func (r *GormRepo) PendingCompensationFailures(ctx context.Context, maxAttempts, limit int) ([]models.CompensationFailure, error) {
	var out []models.CompensationFailure
	err := r.DB.WithContext(ctx).
		Where("resolved = ? AND attempts < ?", false, maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *GormRepo) ResolveCompensationFailure(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.CompensationFailure{}).
		Where("id = ?", id).
		Update("resolved", true).Error
}

func (r *GormRepo) BumpCompensationFailure(ctx context.Context, id uint, lastErr string) error {
	return r.DB.WithContext(ctx).Model(&models.CompensationFailure{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts": gorm.Expr("attempts + 1"),
			"error":    lastErr,
		}).Error
}
