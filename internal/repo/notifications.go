package repo

import (
	"context"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

func (r *GormRepo) SaveNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *GormRepo) ListNotifications(ctx context.Context, audience models.Audience, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	q := r.DB.WithContext(ctx).Model(&models.Notification{})
	if audience != "" {
		q = q.Where("audience = ?", audience)
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}
