package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type CartHTTP struct {
	Carts CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	cart, err := h.Carts.GetCart(ctx, actor.UserID)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := bind(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	item, err := h.Carts.AddToCart(ctx, actor.UserID, req)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "product_id", item.ProductID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) DeleteOneFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.delete_one")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	productID, err := uuid.Parse(c.QueryParam("product_id"))
	if err != nil {
		l.Warn("delete_one_error", "status", 400, "reason", "product_id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is not a uuid")
	}

	deleted, item, err := h.Carts.DeleteOneFromCart(ctx, actor.UserID, productID)
	if err != nil {
		return fail(l, "delete_one", err)
	}

	l.Info("delete_one_success", "product_id", productID, "deleted", deleted)
	resp := transport.DeleteOneFromCartResponse{ProductID: productID, Deleted: deleted}
	if !deleted {
		resp.Quantity = item.Quantity
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear_cart")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	if err := h.Carts.ClearCart(ctx, actor.UserID); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}
