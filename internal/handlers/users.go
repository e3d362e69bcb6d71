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

type UserHandler struct {
	Users    *service.UserService
	Authz    *service.AuthzService
	Producer mykafka.Publisher
}

func (h *UserHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicUserEvents, fmt.Sprint(event["user_id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req service.CreateUserInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and a password of at least 8 characters are required")
	}

	user, err := h.Users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":     "user_created",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	user, err := h.Users.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	var req service.UpdateUserInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	user, err := h.Users.UpdateUser(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, id); err != nil {
		return err
	}

	if err := h.Users.DeleteUser(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{"type": "user_deleted", "user_id": id})
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), 10)

	users, err := h.Users.ListUsers(c.Request().Context(), page, perPage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// requireOwnership lets admins through and everyone else only to their
// own record.
func (h *UserHandler) requireOwnership(c echo.Context, ownerID uint) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if !h.Authz.OwnsResource(identity, ownerID) {
		return echo.NewHTTPError(http.StatusForbidden, "access denied. You can only access your own resources")
	}
	return nil
}
