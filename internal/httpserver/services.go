package httpserver

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/es"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/service"
	"github.com/Skotchmaster/pet_shop/internal/transport"
)

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks . OrderService,ReportService,MaintenanceService

type OrderService interface {
	CreateOrder(ctx context.Context, userID *uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID, actor service.Actor) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int64, error)
	ListAll(ctx context.Context, status models.OrderStatus, page, size int) ([]models.Order, int64, error)
	CancelOrder(ctx context.Context, id uuid.UUID, actor service.Actor) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, adminID uuid.UUID) (*models.Order, error)
	RequestReturn(ctx context.Context, id, userID uuid.UUID, reason, description string) (*models.Order, error)
}

type RatingService interface {
	RateProduct(ctx context.Context, userID, productID uuid.UUID, score int, comment string) (*models.CatalogItem, error)
}

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddCartItemRequest) (*models.CartItem, error)
	DeleteOneFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, *models.CartItem, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID uuid.UUID, req transport.CreateBookingRequest) (*models.ServiceOrder, error)
	ListBookings(ctx context.Context, userID uuid.UUID, page, size int) ([]models.ServiceOrder, error)
	CancelBooking(ctx context.Context, id uuid.UUID, actor service.Actor) (*models.ServiceOrder, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) (*models.ServiceOrder, error)
}

type MaintenanceService interface {
	RecomputeRemainingStock(ctx context.Context) (service.StockReport, error)
	CleanupInvalidOrders(ctx context.Context) (int64, error)
	CleanupDanglingOrders(ctx context.Context) (int64, error)
}

type ReportService interface {
	Revenue(ctx context.Context, p service.Period) (*service.RevenueReport, error)
	Dashboard(ctx context.Context, p service.Period) (*service.Dashboard, error)
}

type NotificationLister interface {
	List(ctx context.Context, audience models.Audience, limit, offset int) ([]models.Notification, error)
}

type CompensationRetrier interface {
	Retry(ctx context.Context, maxAttempts, limit int) (compensation.RetryResult, error)
}

type OrderSearcher interface {
	Search(ctx context.Context, q string, from, size int) (int64, []es.OrderDoc, error)
}

type EventSource interface {
	Subscribe() *broadcast.Subscription
}
