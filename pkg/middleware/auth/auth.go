package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pet_shop/pkg/logging"
	"github.com/Skotchmaster/pet_shop/pkg/tokens"
)

const (
	AccessCookie = "accessToken"

	CtxUserID = "user_id"
	CtxRole   = "role"
)

// TokenMiddleware validates access tokens minted by the auth service.
type TokenMiddleware struct {
	JWTSecret []byte
}

func NewTokenMiddleware(secret []byte) *TokenMiddleware {
	return &TokenMiddleware{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *TokenMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *TokenMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// OptionalAuth lets anonymous requests through and only rejects a token
// that is present but invalid.
func (m *TokenMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerOrCookie(c)
		if raw == "" {
			return next(c)
		}
		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		setUserContext(c, claims)
		return next(c)
	}
}

func (m *TokenMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerOrCookie(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			logging.FromContext(c.Request().Context()).Debug("token_rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

func bearerOrCookie(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if v, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(v)
		}
	}
	if ck, err := c.Cookie(AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)

	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", claims.Subject)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
}

func UserID(c echo.Context) string {
	v, _ := c.Get(CtxUserID).(string)
	return v
}

func IsAdmin(c echo.Context) bool {
	v, _ := c.Get(CtxRole).(string)
	return v == tokens.RoleAdmin
}
