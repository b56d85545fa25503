package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/lock"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/repo/repotest"
	"github.com/Skotchmaster/pet_shop/internal/transport"
)

// Wednesday; the Monday of that week is 2026-03-16.
var fixedNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	repo     *repo.GormRepo
	hub      *broadcast.Hub
	orders   *OrderService
	ratings  *RatingService
	maint    *MaintenanceService
	reports  *ReportService
	bookings *BookingService
	carts    *CartService
	shipping uuid.UUID
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repotest.NewRepo(t)
	hub := broadcast.NewHub(nil)
	t.Cleanup(hub.Close)

	runner := &compensation.Runner{Store: r, Notifier: &notify.GormStore{Repo: r}}
	clock := func() time.Time { return fixedNow }
	maint := NewMaintenanceService(r, lock.NewLocal(), 24*time.Hour)
	maint.Now = clock

	env := &testEnv{
		repo:     r,
		hub:      hub,
		orders:   &OrderService{Repo: r, Compensations: runner, Events: hub, Now: clock},
		ratings:  &RatingService{Repo: r, Compensations: runner},
		maint:    maint,
		reports:  &ReportService{Repo: r, Maintenance: maint, Location: time.UTC, LowStockThreshold: 5, Now: clock},
		bookings: &BookingService{Repo: r, Compensations: runner, Events: hub, Now: clock},
		carts:    &CartService{Repo: r},
	}
	env.shipping = env.seedShipping(t, 10)
	return env
}

func (e *testEnv) seedShipping(t *testing.T, fee float64) uuid.UUID {
	t.Helper()
	p := models.ShippingProvider{Name: "courier", Fee: fee, Active: true}
	require.NoError(t, e.repo.DB.Create(&p).Error)
	return p.ID
}

func (e *testEnv) seedProduct(t *testing.T, kind models.ProductKind, price float64, qty int) uuid.UUID {
	t.Helper()
	item := models.CatalogItem{Name: string(kind) + "-item", Price: price, Quantity: qty, ShippingID: &e.shipping}
	var err error
	if kind == models.KindFood {
		f := models.Food{CatalogItem: item}
		err = e.repo.DB.Create(&f).Error
		item.ID = f.ID
	} else {
		a := models.Accessory{CatalogItem: item}
		err = e.repo.DB.Create(&a).Error
		item.ID = a.ID
	}
	require.NoError(t, err)
	return item.ID
}

func (e *testEnv) seedAddress(t *testing.T) uuid.UUID {
	t.Helper()
	a := models.Address{FullName: "Jane Doe", Line1: "1 Main St", City: "Springfield"}
	require.NoError(t, e.repo.DB.Create(&a).Error)
	return a.ID
}

func (e *testEnv) product(t *testing.T, kind models.ProductKind, id uuid.UUID) *models.CatalogItem {
	t.Helper()
	p, err := e.repo.FindProduct(context.Background(), kind, id)
	require.NoError(t, err)
	return p
}

func line(id uuid.UUID, kind models.ProductKind, qty int, price float64) transport.CreateOrderItem {
	return transport.CreateOrderItem{ProductID: id, ProductType: kind, Quantity: qty, Price: price}
}

func fptr(f float64) *float64 { return &f }

// orderRequest builds a request whose total matches the lines plus the
// default shipping fee of 10.
func (e *testEnv) orderRequest(t *testing.T, items ...transport.CreateOrderItem) transport.CreateOrderRequest {
	t.Helper()
	total := 10.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	addr := e.seedAddress(t)
	return transport.CreateOrderRequest{
		Items:          items,
		Summary:        transport.SummaryInput{Total: fptr(total)},
		CustomerInfoID: &addr,
	}
}

func (e *testEnv) placeOrder(t *testing.T, userID uuid.UUID, items ...transport.CreateOrderItem) *models.Order {
	t.Helper()
	o, err := e.orders.CreateOrder(context.Background(), &userID, e.orderRequest(t, items...))
	require.NoError(t, err)
	return o
}

func (e *testEnv) setStatus(t *testing.T, id uuid.UUID, s models.OrderStatus) {
	t.Helper()
	require.NoError(t, e.repo.DB.Model(&models.Order{}).Where("id = ?", id).Update("status", s).Error)
}

func (e *testEnv) setCreatedAt(t *testing.T, id uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, e.repo.DB.Model(&models.Order{}).Where("id = ?", id).UpdateColumn("created_at", at.UTC()).Error)
}

func (e *testEnv) notifications(t *testing.T, audience models.Audience) []models.Notification {
	t.Helper()
	out, err := e.repo.ListNotifications(context.Background(), audience, 100, 0)
	require.NoError(t, err)
	return out
}

func (e *testEnv) deadLetters(t *testing.T) []models.CompensationFailure {
	t.Helper()
	out, err := e.repo.PendingCompensationFailures(context.Background(), 100, 100)
	require.NoError(t, err)
	return out
}

func recvEvent(t *testing.T, s *broadcast.Subscription) broadcast.Event {
	t.Helper()
	select {
	case ev := <-s.C():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return broadcast.Event{}
	}
}
