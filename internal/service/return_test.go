package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/models"
)

func TestRequestReturn_ShippedOrder(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 10)
	user := uuid.New()
	order := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))
	env.setStatus(t, order.ID, models.StatusShipped)

	sub := env.hub.Subscribe()
	defer sub.Close()

	got, err := env.orders.RequestReturn(ctx, order.ID, user, "  damaged ", "box was crushed")
	require.NoError(t, err)

	assert.Equal(t, models.StatusReturned, got.Status)
	require.NotNil(t, got.ReturnRequest)
	assert.True(t, got.ReturnRequest.IsReturned)
	assert.Equal(t, "damaged", got.ReturnRequest.ReturnReason)
	assert.Equal(t, "box was crushed", got.ReturnRequest.ReturnDescription)
	assert.Equal(t, models.ReturnPending, got.ReturnRequest.Status)
	assert.Equal(t, user, got.ReturnRequest.RequestedBy)
	assert.True(t, got.ReturnRequest.RequestedAt.Equal(fixedNow))

	require.Len(t, got.Audits, 1)
	assert.Equal(t, models.StatusReturned, got.Audits[0].Status)

	ev := recvEvent(t, sub)
	assert.Equal(t, broadcast.EventReturnRequested, ev.Type)

	var titles []string
	for _, n := range env.notifications(t, models.AudienceAdmin) {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Return requested")
}

func TestRequestReturn_CompletedOrderIsReturnable(t *testing.T) {
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 10)
	user := uuid.New()
	order := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))
	env.setStatus(t, order.ID, models.StatusCompleted)

	got, err := env.orders.RequestReturn(context.Background(), order.ID, user, "wrong size", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, got.Status)
}

func TestRequestReturn_SecondRequestConflicts(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 10)
	user := uuid.New()
	order := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))
	env.setStatus(t, order.ID, models.StatusShipped)

	_, err := env.orders.RequestReturn(ctx, order.ID, user, "damaged", "")
	require.NoError(t, err)

	_, err = env.orders.RequestReturn(ctx, order.ID, user, "still damaged", "")
	require.ErrorIs(t, err, ErrConflict)

	stored, err := env.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "damaged", stored.ReturnRequest.ReturnReason)
}

func TestRequestReturn_Rejections(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	food := env.seedProduct(t, models.KindFood, 10, 10)
	user := uuid.New()
	order := env.placeOrder(t, user, line(food, models.KindFood, 1, 10))

	_, err := env.orders.RequestReturn(ctx, order.ID, user, "   ", "")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.orders.RequestReturn(ctx, order.ID, uuid.New(), "damaged", "")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.orders.RequestReturn(ctx, uuid.New(), user, "damaged", "")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.orders.RequestReturn(ctx, order.ID, user, "damaged", "")
	require.ErrorIs(t, err, ErrForbidden)
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := env.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.ReturnRequest)
}
