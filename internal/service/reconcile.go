package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/pet_shop/internal/lock"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

const sweepLockName = "order-sweep"

type MaintenanceService struct {
	Repo          *repo.GormRepo
	Lock          lock.Locker
	DanglingGrace time.Duration
	Now           func() time.Time
}

func NewMaintenanceService(r *repo.GormRepo, l lock.Locker, grace time.Duration) *MaintenanceService {
	if l == nil {
		l = lock.NewLocal()
	}
	return &MaintenanceService{Repo: r, Lock: l, DanglingGrace: grace}
}

type StockReport struct {
	InvalidOrdersRemoved int64 `json:"invalid_orders_removed"`
	FoodsUpdated         int   `json:"foods_updated"`
	AccessoriesUpdated   int   `json:"accessories_updated"`
	ProductsWithSales    int   `json:"products_with_sales"`
}

func (s *MaintenanceService) acquire(ctx context.Context) (func(), error) {
	release, ok, err := s.Lock.TryLock(ctx, sweepLockName)
	if err != nil {
		return nil, storeErr("acquire sweep guard", err)
	}
	if !ok {
		return nil, ErrSweepInProgress
	}
	return release, nil
}

// RecomputeRemainingStock purges invalid orders, then rebuilds
// remaining_stock and sold_quantity of every product from order history.
// Running it twice without new orders yields the same values.
func (s *MaintenanceService) RecomputeRemainingStock(ctx context.Context) (StockReport, error) {
	var rep StockReport

	release, err := s.acquire(ctx)
	if err != nil {
		return rep, err
	}
	defer release()

	if rep.InvalidOrdersRemoved, err = s.Repo.SoftDeleteInvalidOrders(ctx); err != nil {
		return rep, storeErr("cleanup invalid orders", err)
	}

	sold, err := s.Repo.SoldQuantities(ctx)
	if err != nil {
		return rep, storeErr("sum sold quantities", err)
	}
	rep.ProductsWithSales = len(sold)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Repo.ApplyStock(gctx, models.KindFood, sold)
		rep.FoodsUpdated = n
		return err
	})
	g.Go(func() error {
		n, err := s.Repo.ApplyStock(gctx, models.KindAccessory, sold)
		rep.AccessoriesUpdated = n
		return err
	})
	if err := g.Wait(); err != nil {
		return rep, storeErr("apply stock", err)
	}

	logging.FromContext(ctx).Info("stock_recomputed",
		"invalid_removed", rep.InvalidOrdersRemoved,
		"foods", rep.FoodsUpdated,
		"accessories", rep.AccessoriesUpdated,
	)
	return rep, nil
}

// CleanupInvalidOrders soft-deletes orders without line items, summary
// total or status.
func (s *MaintenanceService) CleanupInvalidOrders(ctx context.Context) (int64, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	n, err := s.Repo.SoftDeleteInvalidOrders(ctx)
	if err != nil {
		return 0, storeErr("cleanup invalid orders", err)
	}
	return n, nil
}

// CleanupDanglingOrders soft-deletes orders older than the grace period
// whose shipping address no longer resolves.
func (s *MaintenanceService) CleanupDanglingOrders(ctx context.Context) (int64, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	n, err := s.Repo.SoftDeleteDanglingOrders(ctx, now.Add(-s.DanglingGrace))
	if err != nil {
		return 0, storeErr("cleanup dangling orders", err)
	}
	if n > 0 {
		logging.FromContext(ctx).Info("dangling_orders_removed", "count", n)
	}
	return n, nil
}
