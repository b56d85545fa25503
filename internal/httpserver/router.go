package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/pet_shop/pkg/middleware/auth"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	CartHandler    *CartHTTP
	BookingHandler *BookingHTTP
	AdminHandler   *AdminHTTP
	EventsHandler  *EventsHTTP
	JWTSecret      []byte
	// Ready reports whether the service can take traffic.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewTokenMiddleware(d.JWTSecret)
	api := e.Group("/api/v1")

	api.POST("/orders", d.OrderHandler.CreateOrder, authMW.OptionalAuth)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/events", d.EventsHandler.Stream)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)
	orders.POST("/:id/return", d.OrderHandler.ReturnOrder)

	api.POST("/products/:id/rating", d.OrderHandler.RateProduct, authMW.RequireAuth)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.DELETE("/items", d.CartHandler.DeleteOneFromCart)

	bookings := api.Group("/bookings", authMW.RequireAuth)
	bookings.POST("", d.BookingHandler.CreateBooking)
	bookings.GET("", d.BookingHandler.ListBookings)
	bookings.POST("/:id/cancel", d.BookingHandler.CancelBooking)

	admin := api.Group("/admin", authMW.RequireAdmin)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/search", d.AdminHandler.SearchOrders)
	admin.PATCH("/orders/:id/status", d.AdminHandler.UpdateStatus)
	admin.POST("/orders/cleanup", d.AdminHandler.CleanupOrders)
	admin.POST("/reconcile", d.AdminHandler.Reconcile)
	admin.GET("/reports/revenue", d.AdminHandler.Revenue)
	admin.GET("/dashboard", d.AdminHandler.Dashboard)
	admin.PATCH("/bookings/:id/status", d.BookingHandler.UpdateBookingStatus)
	admin.GET("/notifications", d.AdminHandler.ListNotifications)
	admin.POST("/compensations/retry", d.AdminHandler.RetryCompensations)
}
