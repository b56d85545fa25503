package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/internal/util"
)

type OrderService struct {
	Repo          *repo.GormRepo
	Compensations *compensation.Runner
	Events        broadcast.Publisher
	Now           func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *OrderService) publish(t broadcast.EventType, o *models.Order) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(broadcast.Event{
		Type:    t,
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  string(o.Status),
		At:      s.now(),
	})
}

func (s *OrderService) compensate(ctx context.Context, orderID uuid.UUID, actions ...compensation.Action) {
	if s.Compensations == nil || len(actions) == 0 {
		return
	}
	s.Compensations.Run(ctx, orderID, actions...)
}

// CreateOrder validates the request, persists a pending order and then
// runs its compensations. userID is nil for guest checkouts.
func (s *OrderService) CreateOrder(ctx context.Context, userID *uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	if req.Summary.Total == nil {
		return nil, fmt.Errorf("%w: summary total required", ErrValidation)
	}

	lines := make([]models.LineItem, 0, len(req.Items))
	var first *models.CatalogItem
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product_id required", ErrValidation)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
		}
		if it.Price < 0 || it.Discount < 0 || (it.Amount != nil && *it.Amount < 0) {
			return nil, fmt.Errorf("%w: price, amount and discount must be >= 0", ErrValidation)
		}

		kind, product, err := s.resolveProduct(ctx, it.ProductID, it.ProductType)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = product
		}

		categoryID := it.CategoryID
		if categoryID == nil {
			categoryID = product.CategoryID
		}
		lines = append(lines, models.LineItem{
			ProductID:   it.ProductID,
			ProductType: kind,
			CategoryID:  categoryID,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Amount:      lineAmount(it),
			Discount:    it.Discount,
		})
	}

	customerInfoID, newAddress, err := s.resolveDestination(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	shippingID := req.ShippingID
	if shippingID == nil {
		shippingID = first.ShippingID
	}
	if shippingID == nil {
		return nil, fmt.Errorf("%w: shipping provider required", ErrValidation)
	}
	provider, err := s.Repo.FindShippingProvider(ctx, *shippingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shipping provider does not resolve", ErrValidation)
		}
		return nil, storeErr("find shipping provider", err)
	}

	if req.PaymentID != nil {
		if _, err := s.Repo.FindPaymentMethod(ctx, *req.PaymentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: payment method does not resolve", ErrValidation)
			}
			return nil, storeErr("find payment method", err)
		}
	}

	var voucher *models.Voucher
	if req.VoucherID != nil {
		voucher, err = s.Repo.FindVoucher(ctx, *req.VoucherID)
		if err != nil {
			return nil, storeErr("find voucher", err)
		}
		if !voucher.Usable(s.now()) {
			return nil, fmt.Errorf("%w: voucher expired or exhausted", ErrValidation)
		}
	}

	summary, err := computeSummary(lines, req.Summary, provider.Fee, voucher)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:         userID,
		CustomerInfoID: customerInfoID,
		PaymentID:      req.PaymentID,
		ShippingID:     &provider.ID,
		VoucherID:      req.VoucherID,
		CartID:         req.CartID,
		Status:         models.StatusPending,
		Items:          lines,
		Summary:        summary,
	}
	if err := s.Repo.CreateOrder(ctx, order, newAddress); err != nil {
		return nil, storeErr("create order", err)
	}

	actions := compensation.SoldCounts(order.Items, 1)
	if order.VoucherID != nil {
		actions = append(actions, compensation.VoucherUsage(*order.VoucherID, 1))
	}
	if order.CartID != nil && userID != nil {
		actions = append(actions, compensation.CartClear(*order.CartID, *userID))
	}
	actions = append(actions, compensation.Notify(notify.ForAdmin(
		order.ID.String(),
		"New order",
		fmt.Sprintf("Order %s was placed, total %.2f", order.ID, *order.Summary.Total),
		notify.LevelSuccess,
		orderLink(order.ID),
	)))
	s.compensate(ctx, order.ID, actions...)

	s.publish(broadcast.EventCreated, order)
	return order, nil
}

func (s *OrderService) resolveProduct(ctx context.Context, id uuid.UUID, kind models.ProductKind) (models.ProductKind, *models.CatalogItem, error) {
	if kind != "" {
		if !kind.Valid() {
			return "", nil, fmt.Errorf("%w: unknown product_type %q", ErrValidation, kind)
		}
		p, err := s.Repo.FindProduct(ctx, kind, id)
		if err != nil {
			return "", nil, storeErr(fmt.Sprintf("product %s", id), err)
		}
		return kind, p, nil
	}

	kind, p, err := s.Repo.ResolveProduct(ctx, id)
	if err != nil {
		return "", nil, storeErr(fmt.Sprintf("product %s", id), err)
	}
	return kind, p, nil
}

func (s *OrderService) resolveDestination(ctx context.Context, userID *uuid.UUID, req transport.CreateOrderRequest) (*uuid.UUID, *models.Address, error) {
	if req.CustomerInfoID != nil {
		a, err := s.Repo.FindAddress(ctx, *req.CustomerInfoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("%w: shipping address does not resolve", ErrValidation)
			}
			return nil, nil, storeErr("find address", err)
		}
		return &a.ID, nil, nil
	}

	in := req.Address
	if in == nil {
		return nil, nil, fmt.Errorf("%w: shipping destination required", ErrValidation)
	}
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Line1) == "" || strings.TrimSpace(in.City) == "" {
		return nil, nil, fmt.Errorf("%w: address needs full_name, line1 and city", ErrValidation)
	}
	return nil, &models.Address{
		UserID:     userID,
		FullName:   strings.TrimSpace(in.FullName),
		Phone:      in.Phone,
		Line1:      strings.TrimSpace(in.Line1),
		City:       strings.TrimSpace(in.City),
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	if !actor.Admin && !order.OwnedBy(actor.UserID) {
		return nil, fmt.Errorf("%w: order belongs to another account", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, page, size int) ([]models.Order, int64, error) {
	offset, limit := util.Calculate(page, size)
	orders, total, err := s.Repo.ListOrders(ctx, repo.OrderFilter{UserID: &userID}, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list orders", err)
	}
	return orders, total, nil
}

func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus, page, size int) ([]models.Order, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	offset, limit := util.Calculate(page, size)
	orders, total, err := s.Repo.ListOrders(ctx, repo.OrderFilter{Status: status}, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list orders", err)
	}
	return orders, total, nil
}

// CancelOrder moves a pending order to cancelled. The write is conditional
// on the status still being pending, so concurrent cancels apply once.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidTransition, order.Status)
	}

	applied, err := s.Repo.TransitionOrder(ctx, repo.Transition{
		OrderID: id,
		From:    models.StatusPending,
		To:      models.StatusCancelled,
		ActorID: actor.UserID,
	})
	if err != nil {
		return nil, storeErr("cancel order", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: order is no longer pending", ErrInvalidTransition)
	}
	order.Status = models.StatusCancelled

	s.compensate(ctx, order.ID, s.cancelActions(order, "Order cancelled")...)
	s.publish(broadcast.EventCancelled, order)
	return s.reload(ctx, order)
}

func (s *OrderService) cancelActions(order *models.Order, title string) []compensation.Action {
	actions := compensation.SoldCounts(order.Items, -1)
	if order.VoucherID != nil {
		actions = append(actions, compensation.VoucherUsage(*order.VoucherID, -1))
	}
	return append(actions, compensation.Notify(notify.ForAdmin(
		order.ID.String(),
		title,
		fmt.Sprintf("Order %s was cancelled", order.ID),
		notify.LevelWarning,
		orderLink(order.ID),
	)))
}

// UpdateStatus is the admin transition. It follows the same table as the
// user-facing operations.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, adminID uuid.UUID) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, storeErr("get order", err)
	}
	from := order.Status
	if !CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	applied, err := s.Repo.TransitionOrder(ctx, repo.Transition{
		OrderID: id,
		From:    from,
		To:      status,
		ActorID: adminID,
	})
	if err != nil {
		return nil, storeErr("update status", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: order left status %s", ErrInvalidTransition, from)
	}
	order.Status = status

	var actions []compensation.Action
	if status == models.StatusCancelled {
		actions = s.cancelActions(order, "Order cancelled by admin")
	}
	if order.UserID != nil {
		actions = append(actions, compensation.Notify(notify.ForUser(
			*order.UserID,
			"Order updated",
			fmt.Sprintf("Your order %s is now %s.", order.ID, status),
			notify.LevelInfo,
			orderLink(order.ID),
		)))
	}
	s.compensate(ctx, order.ID, actions...)

	s.publish(broadcast.EventStatusUpdated, order)
	return s.reload(ctx, order)
}

func (s *OrderService) reload(ctx context.Context, order *models.Order) (*models.Order, error) {
	fresh, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, storeErr("reload order", err)
	}
	return fresh, nil
}

func orderLink(id uuid.UUID) string {
	return "/orders/" + id.String()
}
