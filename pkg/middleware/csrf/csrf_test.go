package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{}))
	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/v1/orders", h)
	e.POST("/api/v1/orders", h)
	e.POST("/health/ready", h)
	return e
}

func do(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec := do(newEcho(), httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	require.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN=")
}

func TestCookieClientNeedsToken(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/orders", nil)
	req.Header.Set("Origin", "http://example.com")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusForbidden, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/orders", nil)
	req.Header.Set("Origin", "http://evil.test")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusForbidden, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/orders", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusNoContent, do(e, req).Code)
}

func TestBearerClientsAndSkippedPaths(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer tok")
	require.Equal(t, http.StatusNoContent, do(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/health/ready", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	require.Equal(t, http.StatusNoContent, do(e, req).Code)
}

func TestZeroConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Equal(t, []string{"/health"}, cfg.SkipPrefixes)
	require.False(t, cfg.SkipOriginCheck)

	guarded := Config{SkipPrefixes: []string{}}.withDefaults()
	require.Empty(t, guarded.SkipPrefixes)
}

func TestSkipOriginCheck(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(Config{SkipOriginCheck: true}))
	e.POST("/api/v1/orders", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/orders", nil)
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	require.Equal(t, http.StatusNoContent, do(e, req).Code)
}
