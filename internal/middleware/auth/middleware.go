package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/service"
)

const identityKey = "identity"

type Middleware struct {
	Auth  *service.AuthService
	Authz *service.AuthzService
}

// RequireAuth validates the bearer token and stores the authenticated
// identity on the request context for the gates and handlers below it.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := BearerToken(c)
		if err != nil {
			return err
		}

		identity, err := m.Auth.ValidateAccess(c.Request().Context(), token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(identityKey, identity)
		return next(c)
	}
}

func (m *Middleware) RequireRole(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !m.Authz.HasRole(identity, allowed...) {
				return echo.NewHTTPError(http.StatusForbidden, "access denied. Required roles: "+strings.Join(allowed, ", "))
			}
			return next(c)
		}
	}
}

func (m *Middleware) RequirePermission(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := IdentityFrom(c)
			if identity == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			ok, err := m.Authz.HasAnyPermission(c.Request().Context(), identity, required...)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission check failed")
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access denied. Required permissions: "+strings.Join(required, ", "))
			}
			return next(c)
		}
	}
}

// BearerToken pulls the token out of the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authorization header required")
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}

func IdentityFrom(c echo.Context) *service.Identity {
	if v := c.Get(identityKey); v != nil {
		if identity, ok := v.(*service.Identity); ok {
			return identity
		}
	}
	return nil
}
