package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/internal/service"
	middleware "github.com/Skotchmaster/pet_shop/pkg/middleware/auth"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs the outcome of op and converts err into an echo HTTP error.
func fail(l *slog.Logger, op string, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", status, "reason", "internal error", "error", err)
		return echo.NewHTTPError(status, "internal error")
	}
	l.Warn(op+"_error", "status", status, "reason", err.Error(), "error", err)
	return echo.NewHTTPError(status, err.Error())
}

func paramID(c echo.Context, l *slog.Logger, op, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		l.Warn(op+"_error", "status", 400, "reason", name+" is not a uuid", "error", err)
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, name+" is not a uuid")
	}
	return id, nil
}

func actorOf(c echo.Context) (service.Actor, error) {
	id, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return service.Actor{UserID: id, Admin: middleware.IsAdmin(c)}, nil
}
