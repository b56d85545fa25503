package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type LowStockItem struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Kind           models.ProductKind `json:"product_type"`
	RemainingStock int                `json:"remaining_stock"`
}

func (r *GormRepo) FindProduct(ctx context.Context, kind models.ProductKind, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.DB.WithContext(ctx).Table(kind.Table()).Where("deleted_at IS NULL").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ResolveProduct looks the id up in each catalog in turn. It is only used
// when an order line is created without an explicit product type.
func (r *GormRepo) ResolveProduct(ctx context.Context, id uuid.UUID) (models.ProductKind, *models.CatalogItem, error) {
	for _, kind := range models.ProductKinds {
		item, err := r.FindProduct(ctx, kind, id)
		if err == nil {
			return kind, item, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, err
		}
	}
	return "", nil, gorm.ErrRecordNotFound
}

func (r *GormRepo) AdjustSoldCount(ctx context.Context, kind models.ProductKind, id uuid.UUID, delta int) error {
	res := r.DB.WithContext(ctx).Table(kind.Table()).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("sold_count", gorm.Expr("sold_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateRating locks the product row, lets fn mutate the rating fields and
// writes them back. An error from fn aborts without writing.
func (r *GormRepo) UpdateRating(ctx context.Context, kind models.ProductKind, id uuid.UUID, fn func(item *models.CatalogItem) error) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(kind.Table()).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("deleted_at IS NULL").
			First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}

		ratedBy, err := json.Marshal(item.RatedBy)
		if err != nil {
			return err
		}
		return tx.Table(kind.Table()).Where("id = ?", id).UpdateColumns(map[string]any{
			"rating":       item.Rating,
			"review_count": item.ReviewCount,
			"rated_by":     string(ratedBy),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CatalogIDs(ctx context.Context, kind models.ProductKind) (map[uuid.UUID]struct{}, error) {
	var ids []uuid.UUID
	if err := r.DB.WithContext(ctx).Table(kind.Table()).Where("deleted_at IS NULL").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *GormRepo) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	var out []LowStockItem
	for _, kind := range models.ProductKinds {
		var items []models.CatalogItem
		err := r.DB.WithContext(ctx).Table(kind.Table()).
			Select("id, name, remaining_stock").
			Where("deleted_at IS NULL AND remaining_stock <= ?", threshold).
			Order("remaining_stock ASC").
			Find(&items).Error
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, LowStockItem{ID: it.ID, Name: it.Name, Kind: kind, RemainingStock: it.RemainingStock})
		}
	}
	return out, nil
}
