package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

// SoldQuantities sums line quantities per product over live orders that
// are not cancelled.
func (r *GormRepo) SoldQuantities(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		ProductID uuid.UUID
		Sold      int
	}
	var rows []row
	err := r.DB.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id AS product_id, CAST(SUM(oi.quantity) AS INTEGER) AS sold").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.deleted_at IS NULL AND (o.status IS NULL OR o.status <> ?)", models.StatusCancelled).
		Group("oi.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int, len(rows))
	for _, rw := range rows {
		out[rw.ProductID] = rw.Sold
	}
	return out, nil
}

// ApplyStock rewrites remaining_stock and sold_quantity of every product in
// the catalog from sold. It returns the number of products written.
func (r *GormRepo) ApplyStock(ctx context.Context, kind models.ProductKind, sold map[uuid.UUID]int) (int, error) {
	var items []models.CatalogItem
	if err := r.DB.WithContext(ctx).Table(kind.Table()).
		Select("id, quantity").
		Where("deleted_at IS NULL").
		Find(&items).Error; err != nil {
		return 0, err
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			s := sold[it.ID]
			if err := tx.Table(kind.Table()).Where("id = ?", it.ID).UpdateColumns(map[string]any{
				"remaining_stock": max(0, it.Quantity-s),
				"sold_quantity":   s,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// SoftDeleteInvalidOrders removes orders that have no line items, no
// summary total or no status.
func (r *GormRepo) SoftDeleteInvalidOrders(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("status IS NULL OR status = '' OR summary_total IS NULL OR NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id)").
		Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

// SoftDeleteDanglingOrders removes orders created before cutoff whose
// customer_info is missing or no longer resolves.
func (r *GormRepo) SoftDeleteDanglingOrders(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Where("customer_info_id IS NULL OR NOT EXISTS (SELECT 1 FROM addresses a WHERE a.id = orders.customer_info_id AND a.deleted_at IS NULL)").
		Delete(&models.Order{})
	return res.RowsAffected, res.Error
}
