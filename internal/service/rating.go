package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
)

type RatingService struct {
	Repo          *repo.GormRepo
	Compensations *compensation.Runner
}

// RateProduct folds score into the product's running average. A user may
// rate a product once, and only after one of their orders containing it
// has completed.
func (s *RatingService) RateProduct(ctx context.Context, userID, productID uuid.UUID, score int, comment string) (*models.CatalogItem, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", ErrValidation)
	}

	line, err := s.Repo.CompletedLineForUser(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no completed purchase of this product", ErrForbidden)
		}
		return nil, storeErr("check purchase", err)
	}

	item, err := s.Repo.UpdateRating(ctx, line.ProductType, productID, func(p *models.CatalogItem) error {
		if p.HasRated(userID) {
			return fmt.Errorf("%w: product already rated", ErrConflict)
		}
		p.Rating = nextAverage(p.Rating, p.ReviewCount, score)
		p.ReviewCount++
		p.RatedBy = append(p.RatedBy, userID.String())
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, storeErr("rate product", err)
	}

	if s.Compensations != nil {
		msg := fmt.Sprintf("%s was rated %d/5", item.Name, score)
		if comment != "" {
			msg += ": " + comment
		}
		s.Compensations.Run(ctx, line.OrderID, compensation.Notify(notify.ForAdmin(
			productID.String(), "New rating", msg, notify.LevelInfo, "/products/"+productID.String(),
		)))
	}
	return item, nil
}

// nextAverage is the streaming mean rounded to one decimal.
func nextAverage(avg float64, count, score int) float64 {
	mean := (avg*float64(count) + float64(score)) / float64(count+1)
	return math.Round(mean*10) / 10
}
