package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

func (r *GormRepo) FindAddress(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var a models.Address
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormRepo) FindShippingProvider(ctx context.Context, id uuid.UUID) (*models.ShippingProvider, error) {
	var s models.ShippingProvider
	if err := r.DB.WithContext(ctx).Where("active = ?", true).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) FindPaymentMethod(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	var p models.PaymentMethod
	if err := r.DB.WithContext(ctx).Where("active = ?", true).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) FindVoucher(ctx context.Context, id uuid.UUID) (*models.Voucher, error) {
	var v models.Voucher
	if err := r.DB.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// AdjustVoucherUsage moves used_count by delta without going below zero.
func (r *GormRepo) AdjustVoucherUsage(ctx context.Context, id uuid.UUID, delta int) error {
	q := r.DB.WithContext(ctx).Model(&models.Voucher{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("used_count >= ?", -delta)
	}
	res := q.UpdateColumn("used_count", gorm.Expr("used_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
