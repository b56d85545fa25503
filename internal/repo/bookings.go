package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

func (r *GormRepo) FindGroomingService(ctx context.Context, id uuid.UUID) (*models.GroomingService, error) {
	var s models.GroomingService
	if err := r.DB.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) CreateBooking(ctx context.Context, b *models.ServiceOrder) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *GormRepo) GetBooking(ctx context.Context, id uuid.UUID) (*models.ServiceOrder, error) {
	var b models.ServiceOrder
	if err := r.DB.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) ListBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ServiceOrder, error) {
	var out []models.ServiceOrder
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("appointment_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// TransitionBooking moves a booking from one status to another and reports
// whether the row was still in from.
func (r *GormRepo) TransitionBooking(ctx context.Context, id uuid.UUID, from, to models.BookingStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.ServiceOrder{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
