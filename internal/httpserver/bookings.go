package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/internal/util"
	"github.com/Skotchmaster/pet_shop/pkg/logging"
)

type BookingHTTP struct {
	Bookings BookingService
}

func (h *BookingHTTP) CreateBooking(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.create_booking")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req transport.CreateBookingRequest
	if err := bind(c, &req); err != nil {
		l.Warn("create_booking_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	b, err := h.Bookings.CreateBooking(ctx, actor.UserID, req)
	if err != nil {
		return fail(l, "create_booking", err)
	}

	l.Info("create_booking_success", "booking_id", b.ID)
	return c.JSON(http.StatusCreated, b)
}

func (h *BookingHTTP) ListBookings(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.list_bookings")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, size := util.Normalize(util.Atoi(c.QueryParam("page")), util.Atoi(c.QueryParam("size")))

	list, err := h.Bookings.ListBookings(ctx, actor.UserID, page, size)
	if err != nil {
		return fail(l, "list_bookings", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *BookingHTTP) CancelBooking(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "booking.cancel_booking")

	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, l, "cancel_booking", "id")
	if err != nil {
		return err
	}

	b, err := h.Bookings.CancelBooking(ctx, id, actor)
	if err != nil {
		return fail(l, "cancel_booking", err)
	}

	l.Info("cancel_booking_success", "booking_id", b.ID)
	return c.JSON(http.StatusOK, b)
}

func (h *BookingHTTP) UpdateBookingStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_booking_status")

	id, err := paramID(c, l, "update_booking_status", "id")
	if err != nil {
		return err
	}
	var req transport.UpdateBookingStatusRequest
	if err := bind(c, &req); err != nil {
		l.Warn("update_booking_status_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	b, err := h.Bookings.UpdateBookingStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_booking_status", err)
	}

	l.Info("update_booking_status_success", "booking_id", b.ID, "new_status", b.Status)
	return c.JSON(http.StatusOK, b)
}
