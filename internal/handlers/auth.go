package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/middleware/auth"
	"github.com/dmarkhas/orderflow/internal/mykafka"
	"github.com/dmarkhas/orderflow/internal/service"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Authz    *service.AuthzService
	Producer mykafka.Publisher
}

func (h *AuthHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicUserEvents, fmt.Sprint(event["user_id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// Login accepts a username or email plus password and returns a fresh
// token pair with the user profile.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	result, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_in",
		"user_id":  result.User.UserID,
		"username": result.User.Username,
	})

	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	result, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":    "token_refreshed",
		"user_id": result.User.UserID,
	})

	return c.JSON(http.StatusOK, result)
}

// Logout revokes every session of the caller. It is idempotent: a 204
// comes back even when no session was active.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return err
	}

	identity, err := h.Auth.ValidateAccess(c.Request().Context(), token)
	if err != nil {
		return httpError(err)
	}

	if err := h.Auth.Logout(c.Request().Context(), identity.UserID); err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":     "user_logged_out",
		"user_id":  identity.UserID,
		"username": identity.Username,
	})

	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile plus the effective permission set of
// its current role.
func (h *AuthHandler) Me(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	permissions, err := h.Authz.PermissionsFor(c.Request().Context(), identity.RoleID)
	if err != nil {
		return httpError(err)
	}
	if permissions == nil {
		permissions = []string{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id":     identity.UserID,
		"username":    identity.Username,
		"email":       identity.Email,
		"role":        identity.Role,
		"role_id":     identity.RoleID,
		"permissions": permissions,
	})
}

// Validate is the introspection endpoint for sibling services. It never
// fails the request: bad tokens come back as a valid:false payload.
func (h *AuthHandler) Validate(c echo.Context) error {
	token, err := auth.BearerToken(c)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": "authorization header required"})
	}

	identity, err := h.Auth.ValidateAccess(c.Request().Context(), token)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"valid": false, "error": "invalid or expired token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"valid":    true,
		"user_id":  identity.UserID,
		"username": identity.Username,
		"email":    identity.Email,
		"role":     identity.Role,
		"role_id":  identity.RoleID,
	})
}

// Cleanup sweeps fully-expired token pairs. Operator-triggered, not a
// background job.
func (h *AuthHandler) Cleanup(c echo.Context) error {
	count, err := h.Auth.Cleanup(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Cleaned up %d expired tokens", count),
	})
}
