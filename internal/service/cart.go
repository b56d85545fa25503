package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

// GetCart returns the user's cart, or an empty one if none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.Repo.GetCart(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, storeErr("get cart", err)
	}
	return cart, nil
}

func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddCartItemRequest) (*models.CartItem, error) {
	if req.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be more than zero", ErrValidation)
	}

	kind := req.ProductType
	if kind != "" {
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: unknown product_type %q", ErrValidation, kind)
		}
		if _, err := s.Repo.FindProduct(ctx, kind, req.ProductID); err != nil {
			return nil, storeErr("find product", err)
		}
	} else {
		k, _, err := s.Repo.ResolveProduct(ctx, req.ProductID)
		if err != nil {
			return nil, storeErr("find product", err)
		}
		kind = k
	}

	item := &models.CartItem{ProductID: req.ProductID, ProductType: kind, Quantity: req.Quantity}
	if err := s.Repo.AddToCart(ctx, userID, item); err != nil {
		return nil, storeErr("add to cart", err)
	}
	return item, nil
}

func (s *CartService) DeleteOneFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, *models.CartItem, error) {
	if productID == uuid.Nil {
		return false, nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	deleted, item, err := s.Repo.DeleteOneFromCart(ctx, userID, productID)
	if err != nil {
		return false, nil, storeErr("product not in cart", err)
	}
	return deleted, item, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return storeErr("clear cart", err)
	}
	return nil
}
