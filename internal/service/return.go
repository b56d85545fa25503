package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
)

// RequestReturn opens a return on a shipped or completed order owned by
// userID and moves it to returned. An order can be returned only once.
func (s *OrderService) RequestReturn(ctx context.Context, id, userID uuid.UUID, reason, description string) (*models.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: return_reason required", ErrValidation)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if !order.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: order belongs to another account", ErrForbidden)
	}
	if order.ReturnRequest != nil {
		return nil, fmt.Errorf("%w: return already requested", ErrConflict)
	}
	if !returnable(order.Status) {
		return nil, fmt.Errorf("%w: %w: cannot return order in status %s", ErrForbidden, ErrInvalidTransition, order.Status)
	}

	rr := models.ReturnRequest{
		IsReturned:        true,
		ReturnReason:      reason,
		ReturnDescription: strings.TrimSpace(description),
		RequestedAt:       s.now(),
		RequestedBy:       userID,
		Status:            models.ReturnPending,
	}
	raw, err := json.Marshal(rr)
	if err != nil {
		return nil, fmt.Errorf("%w: encode return request: %w", ErrInternal, err)
	}

	applied, err := s.Repo.TransitionOrder(ctx, repo.Transition{
		OrderID:         id,
		From:            order.Status,
		To:              models.StatusReturned,
		ActorID:         userID,
		Set:             map[string]any{"return_request": string(raw)},
		RequireNoReturn: true,
	})
	if err != nil {
		return nil, storeErr("request return", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: order changed while requesting return", ErrConflict)
	}
	order.Status = models.StatusReturned
	order.ReturnRequest = &rr

	s.compensate(ctx, order.ID, compensation.Notify(notify.ForAdmin(
		order.ID.String(),
		"Return requested",
		fmt.Sprintf("Return requested for order %s: %s", order.ID, reason),
		notify.LevelWarning,
		orderLink(order.ID),
	)))
	s.publish(broadcast.EventReturnRequested, order)
	return s.reload(ctx, order)
}
