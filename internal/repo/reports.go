package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type RevenueRow struct {
	CreatedAt time.Time
	Total     float64
}

type LineRevenueRow struct {
	ProductID   uuid.UUID
	ProductType models.ProductKind
	Amount      float64
}

// CompletedOrderTotals returns the totals of completed product orders with
// a positive total created in [from, to).
func (r *GormRepo) CompletedOrderTotals(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	var rows []RevenueRow
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("created_at, summary_total AS total").
		Where("status = ? AND summary_total IS NOT NULL AND summary_total > 0", models.StatusCompleted).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) CompletedBookingTotals(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	var rows []RevenueRow
	err := r.DB.WithContext(ctx).Model(&models.ServiceOrder{}).
		Select("created_at, total").
		Where("status = ? AND total IS NOT NULL AND total > 0", models.BookingCompleted).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) CompletedOrderLines(ctx context.Context, from, to time.Time) ([]LineRevenueRow, error) {
	var rows []LineRevenueRow
	err := r.DB.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id AS product_id, oi.product_type AS product_type, oi.amount AS amount").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.deleted_at IS NULL AND o.status = ? AND o.summary_total > 0", models.StatusCompleted).
		Where("o.created_at >= ? AND o.created_at < ?", from.UTC(), to.UTC()).
		Scan(&rows).Error
	return rows, err
}
