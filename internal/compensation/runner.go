package compensation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

const actionTimeout = 5 * time.Second

type Store interface {
	AdjustSoldCount(ctx context.Context, kind models.ProductKind, id uuid.UUID, delta int) error
	AdjustVoucherUsage(ctx context.Context, id uuid.UUID, delta int) error
	DeleteCart(ctx context.Context, cartID, ownerID uuid.UUID) error

	SaveCompensationFailure(ctx context.Context, f *models.CompensationFailure) error
	PendingCompensationFailures(ctx context.Context, maxAttempts, limit int) ([]models.CompensationFailure, error)
	ResolveCompensationFailure(ctx context.Context, id uint) error
	BumpCompensationFailure(ctx context.Context, id uint, lastErr string) error
}

type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type Runner struct {
	Store    Store
	Notifier Notifier
}

type RetryResult struct {
	Resolved int `json:"resolved"`
	Failed   int `json:"failed"`
}

// Run executes actions independently of each other and of the caller's
// cancellation. It returns how many of them were dead-lettered.
func (r *Runner) Run(ctx context.Context, orderID uuid.UUID, actions ...Action) int {
	ctx = context.WithoutCancel(ctx)
	l := logging.FromContext(ctx)

	failed := 0
	for _, a := range actions {
		err := r.apply(ctx, a)
		if err == nil {
			continue
		}
		failed++
		l.Warn("compensation_failed",
			"order_id", orderID,
			"kind", a.Kind,
			"target_id", a.TargetID,
			"error", err,
		)
		r.deadLetter(ctx, l, orderID, a, err)
	}
	return failed
}

// Retry replays unresolved dead letters that have been attempted fewer
// than maxAttempts times.
func (r *Runner) Retry(ctx context.Context, maxAttempts, limit int) (RetryResult, error) {
	var res RetryResult

	pending, err := r.Store.PendingCompensationFailures(ctx, maxAttempts, limit)
	if err != nil {
		return res, err
	}

	l := logging.FromContext(ctx)
	for _, f := range pending {
		var a Action
		if err := json.Unmarshal([]byte(f.Payload), &a); err != nil {
			res.Failed++
			if bErr := r.Store.BumpCompensationFailure(ctx, f.ID, fmt.Sprintf("decode payload: %v", err)); bErr != nil {
				l.Warn("compensation_bump_error", "id", f.ID, "order_id", f.OrderID, "error", bErr)
			}
			continue
		}

		if err := r.apply(ctx, a); err != nil {
			res.Failed++
			if bErr := r.Store.BumpCompensationFailure(ctx, f.ID, err.Error()); bErr != nil {
				return res, bErr
			}
			l.Warn("compensation_retry_failed", "id", f.ID, "order_id", f.OrderID, "kind", a.Kind, "attempts", f.Attempts+1, "error", err)
			continue
		}

		if err := r.Store.ResolveCompensationFailure(ctx, f.ID); err != nil {
			return res, err
		}
		res.Resolved++
	}

	if res.Resolved > 0 || res.Failed > 0 {
		l.Info("compensation_retry_done", "resolved", res.Resolved, "failed", res.Failed)
	}
	return res, nil
}

func (r *Runner) apply(ctx context.Context, a Action) error {
	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()

	switch a.Kind {
	case KindSoldCount:
		return r.Store.AdjustSoldCount(ctx, a.ProductType, a.TargetID, a.Delta)
	case KindVoucherUsage:
		return r.Store.AdjustVoucherUsage(ctx, a.TargetID, a.Delta)
	case KindCartClear:
		return r.Store.DeleteCart(ctx, a.TargetID, a.OwnerID)
	case KindNotify:
		if a.Notification == nil {
			return errors.New("notify action without notification")
		}
		if r.Notifier == nil {
			return errors.New("no notifier configured")
		}
		n := *a.Notification
		return r.Notifier.Notify(ctx, &n)
	default:
		return fmt.Errorf("unknown compensation kind %q", a.Kind)
	}
}

func (r *Runner) deadLetter(ctx context.Context, l *slog.Logger, orderID uuid.UUID, a Action, cause error) {
	payload, err := json.Marshal(a)
	if err != nil {
		l.Error("compensation_dead_letter_error", "order_id", orderID, "kind", a.Kind, "error", err)
		return
	}
	f := &models.CompensationFailure{
		OrderID:  orderID,
		Kind:     string(a.Kind),
		Payload:  string(payload),
		Error:    cause.Error(),
		Attempts: 1,
	}
	if err := r.Store.SaveCompensationFailure(ctx, f); err != nil {
		l.Error("compensation_dead_letter_error", "order_id", orderID, "kind", a.Kind, "error", err)
	}
}
