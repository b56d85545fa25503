package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

func TestRecomputeRemainingStock_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 50)
	toy := env.seedProduct(t, models.KindAccessory, 5, 4)
	idle := env.seedProduct(t, models.KindFood, 1, 7)
	user := uuid.New()

	env.placeOrder(t, user, line(food, models.KindFood, 3, 10), line(toy, models.KindAccessory, 6, 5))
	env.placeOrder(t, user, line(food, models.KindFood, 2, 10))
	cancelled := env.placeOrder(t, user, line(food, models.KindFood, 10, 10))
	_, err := env.orders.CancelOrder(ctx, cancelled.ID, Actor{UserID: user})
	require.NoError(t, err)

	first, err := env.maint.RecomputeRemainingStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.FoodsUpdated)
	assert.Equal(t, 1, first.AccessoriesUpdated)
	assert.Equal(t, 2, first.ProductsWithSales)

	f := env.product(t, models.KindFood, food)
	assert.Equal(t, 5, f.SoldQuantity)
	assert.Equal(t, 45, f.RemainingStock)

	a := env.product(t, models.KindAccessory, toy)
	assert.Equal(t, 6, a.SoldQuantity)
	assert.Zero(t, a.RemainingStock, "remaining stock never goes negative")

	i := env.product(t, models.KindFood, idle)
	assert.Equal(t, 7, i.RemainingStock)

	second, err := env.maint.RecomputeRemainingStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 45, env.product(t, models.KindFood, food).RemainingStock)
}

func TestRecomputeRemainingStock_PurgesInvalidOrders(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 20)
	user := uuid.New()
	valid := env.placeOrder(t, user, line(food, models.KindFood, 2, 10))

	noItems := models.Order{UserID: &user, Status: models.StatusPending, Summary: models.Summary{Total: fptr(5)}}
	require.NoError(t, env.repo.DB.Create(&noItems).Error)

	noTotal := models.Order{
		UserID: &user,
		Status: models.StatusPending,
		Items:  []models.LineItem{{ProductID: food, ProductType: models.KindFood, Quantity: 4, Price: 10, Amount: 40}},
	}
	require.NoError(t, env.repo.DB.Create(&noTotal).Error)

	rep, err := env.maint.RecomputeRemainingStock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.InvalidOrdersRemoved)

	f := env.product(t, models.KindFood, food)
	assert.Equal(t, 2, f.SoldQuantity)
	assert.Equal(t, 18, f.RemainingStock)

	_, err = env.repo.GetOrder(ctx, noTotal.ID)
	require.Error(t, err)
	_, err = env.repo.GetOrder(ctx, valid.ID)
	require.NoError(t, err)

	n, err := env.maint.CleanupInvalidOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleanupDanglingOrders(t *testing.T) {
	var logs bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&logs, "info"))
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 20)
	user := uuid.New()

	old := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))
	recent := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))
	healthy := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))

	for _, o := range []*models.Order{old, recent} {
		require.NoError(t, env.repo.DB.Delete(&models.Address{}, "id = ?", *o.CustomerInfoID).Error)
	}
	env.setCreatedAt(t, old.ID, fixedNow.Add(-48*time.Hour))
	env.setCreatedAt(t, recent.ID, fixedNow.Add(-time.Hour))
	env.setCreatedAt(t, healthy.ID, fixedNow.Add(-48*time.Hour))

	n, err := env.maint.CleanupDanglingOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, strings.Count(logs.String(), "dangling_orders_removed"))

	_, err = env.repo.GetOrder(ctx, old.ID)
	require.Error(t, err)
	for _, o := range []*models.Order{recent, healthy} {
		_, err = env.repo.GetOrder(ctx, o.ID)
		require.NoError(t, err)
	}
}

func TestSweepGuard(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	release, ok, err := env.maint.Lock.TryLock(ctx, sweepLockName)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.maint.RecomputeRemainingStock(ctx)
	require.ErrorIs(t, err, ErrSweepInProgress)
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.maint.CleanupDanglingOrders(ctx)
	require.ErrorIs(t, err, ErrSweepInProgress)

	release()
	_, err = env.maint.RecomputeRemainingStock(ctx)
	require.NoError(t, err)
}
