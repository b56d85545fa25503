package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/internal/util"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
	middleware "github.com/Skotchmaster/pet_shop/pkg/middleware/auth"
)

type OrderHTTP struct {
	Orders  OrderService
	Ratings RatingService
}

// CreateOrder accepts guests; a valid token attaches the order to its user.
func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	var userID *uuid.UUID
	if sub := middleware.UserID(c); sub != "" {
		id, err := uuid.Parse(sub)
		if err != nil {
			l.Warn("create_order_error", "status", 401, "reason", "subject is not a uuid", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		userID = &id
	}

	order, err := h.Orders.CreateOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "get_order", "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrder(ctx, id, actor)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, size := util.Normalize(util.Atoi(c.QueryParam("page")), util.Atoi(c.QueryParam("size")))

	orders, total, err := h.Orders.ListForUser(ctx, actor.UserID, page, size)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Order]{Items: orders, Total: total, Page: page, Size: size})
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "cancel_order", "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.CancelOrder(ctx, id, actor)
	if err != nil {
		return fail(l, "cancel_order", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ReturnOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.return_order")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "return_order", "id")
	if err != nil {
		return err
	}
	var req transport.ReturnOrderRequest
	if err := bind(c, &req); err != nil {
		l.Warn("return_order_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	order, err := h.Orders.RequestReturn(ctx, id, actor.UserID, req.Reason, req.Description)
	if err != nil {
		return fail(l, "return_order", err)
	}

	l.Info("return_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) RateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.rate_product")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "rate_product", "id")
	if err != nil {
		return err
	}
	var req transport.RateProductRequest
	if err := bind(c, &req); err != nil {
		l.Warn("rate_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	item, err := h.Ratings.RateProduct(ctx, actor.UserID, id, req.Score, req.Comment)
	if err != nil {
		return fail(l, "rate_product", err)
	}

	l.Info("rate_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{
		"product_id":   item.ID,
		"rating":       item.Rating,
		"review_count": item.ReviewCount,
	})
}
