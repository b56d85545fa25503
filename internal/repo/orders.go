package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type OrderFilter struct {
	UserID *uuid.UUID
	Status models.OrderStatus
}

// Transition describes a conditional status change: it only applies while
// the order is live and still in From.
type Transition struct {
	OrderID uuid.UUID
	From    models.OrderStatus
	To      models.OrderStatus
	ActorID uuid.UUID
	Set     map[string]any

	// RequireNoReturn additionally demands that no return_request exists.
	RequireNoReturn bool
}

// CreateOrder persists the order with its line items. When address is set
// it is written first and becomes the order's customer_info.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, address *models.Address) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address != nil {
			if err := tx.Create(address).Error; err != nil {
				return err
			}
			order.CustomerInfoID = &address.ID
		}
		return tx.Create(order).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Preload("Audits", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, limit, offset int) ([]models.Order, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Session(&gorm.Session{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := q.Preload("Items").Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionOrder applies t atomically and appends an audit entry. It
// reports false when the order was not in t.From anymore.
func (r *GormRepo) TransitionOrder(ctx context.Context, t Transition) (bool, error) {
	applied := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		set := map[string]any{"status": t.To}
		for k, v := range t.Set {
			set[k] = v
		}

		q := tx.Model(&models.Order{}).Where("id = ? AND status = ?", t.OrderID, t.From)
		if t.RequireNoReturn {
			q = q.Where("return_request IS NULL")
		}
		res := q.Updates(set)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		return tx.Create(&models.OrderAudit{
			OrderID:   t.OrderID,
			AccountID: t.ActorID,
			Status:    t.To,
		}).Error
	})
	return applied, err
}

func (r *GormRepo) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	type row struct {
		Status models.OrderStatus
		N      int64
	}
	var rows []row
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[models.OrderStatus]int64, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		out[s] = 0
	}
	for _, rw := range rows {
		out[rw.Status] = rw.N
	}
	return out, nil
}

// CompletedLineForUser finds a line for productID in one of userID's live
// completed orders.
func (r *GormRepo) CompletedLineForUser(ctx context.Context, userID, productID uuid.UUID) (*models.LineItem, error) {
	var li models.LineItem
	err := r.DB.WithContext(ctx).
		Joins("JOIN orders o ON o.id = order_items.order_id").
		Where("o.user_id = ? AND o.status = ? AND o.deleted_at IS NULL", userID, models.StatusCompleted).
		Where("order_items.product_id = ?", productID).
		First(&li).Error
	if err != nil {
		return nil, err
	}
	return &li, nil
}
