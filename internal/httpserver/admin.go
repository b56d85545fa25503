package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/service"
	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/internal/util"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type AdminHTTP struct {
	Orders        OrderService
	Maintenance   MaintenanceService
	Reports       ReportService
	Notifications NotificationLister
	Compensations CompensationRetrier
	// Search is nil when elasticsearch is not configured.
	Search OrderSearcher

	CompensationMaxAttempts int
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page, size := util.Normalize(util.Atoi(c.QueryParam("page")), util.Atoi(c.QueryParam("size")))
	status := models.OrderStatus(c.QueryParam("status"))

	orders, total, err := h.Orders.ListAll(ctx, status, page, size)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Order]{Items: orders, Total: total, Page: page, Size: size})
}

func (h *AdminHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_status")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "update_status", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	order, err := h.Orders.UpdateStatus(ctx, id, req.Status, actor.UserID)
	if err != nil {
		return fail(l, "update_status", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.search_orders")

	if h.Search == nil {
		l.Warn("search_orders_error", "status", 503, "reason", "search is not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	page, size := util.Normalize(util.Atoi(c.QueryParam("page")), util.Atoi(c.QueryParam("size")))
	from, size := util.Calculate(page, size)

	total, docs, err := h.Search.Search(ctx, c.QueryParam("q"), from, size)
	if err != nil {
		l.Error("search_orders_error", "status", 502, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search backend failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "orders": docs})
}

func (h *AdminHTTP) Reconcile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.reconcile")

	rep, err := h.Maintenance.RecomputeRemainingStock(ctx)
	if err != nil {
		return fail(l, "reconcile", err)
	}

	l.Info("reconcile_success", "foods", rep.FoodsUpdated, "accessories", rep.AccessoriesUpdated)
	return c.JSON(http.StatusOK, rep)
}

// CleanupOrders runs both cleanup passes: structurally invalid orders and
// orders whose shipping address is gone.
func (h *AdminHTTP) CleanupOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.cleanup_orders")

	invalid, err := h.Maintenance.CleanupInvalidOrders(ctx)
	if err != nil {
		return fail(l, "cleanup_orders", err)
	}
	dangling, err := h.Maintenance.CleanupDanglingOrders(ctx)
	if err != nil {
		return fail(l, "cleanup_orders", err)
	}

	l.Info("cleanup_orders_success", "invalid", invalid, "dangling", dangling)
	return c.JSON(http.StatusOK, echo.Map{"invalid_removed": invalid, "dangling_removed": dangling})
}

func (h *AdminHTTP) Revenue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.revenue")

	p, err := service.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return fail(l, "revenue", err)
	}
	rep, err := h.Reports.Revenue(ctx, p)
	if err != nil {
		return fail(l, "revenue", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	p, err := service.ParsePeriod(c.QueryParam("period"))
	if err != nil {
		return fail(l, "dashboard", err)
	}
	d, err := h.Reports.Dashboard(ctx, p)
	if err != nil {
		return fail(l, "dashboard", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHTTP) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_notifications")

	page, size := util.Normalize(util.Atoi(c.QueryParam("page")), util.Atoi(c.QueryParam("size")))
	offset, limit := util.Calculate(page, size)

	list, err := h.Notifications.List(ctx, models.AudienceAdmin, limit, offset)
	if err != nil {
		l.Error("list_notifications_error", "status", 500, "reason", "cannot list notifications", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list notifications")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AdminHTTP) RetryCompensations(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.retry_compensations")

	res, err := h.Compensations.Retry(ctx, h.CompensationMaxAttempts, util.MaxPageSize)
	if err != nil {
		l.Error("retry_compensations_error", "status", 500, "reason", "cannot load dead letters", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load dead letters")
	}

	l.Info("retry_compensations_success", "resolved", res.Resolved, "failed", res.Failed)
	return c.JSON(http.StatusOK, res)
}
