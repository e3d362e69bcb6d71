package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/service"
)

type PermissionHandler struct {
	Permissions *service.PermissionService
}

func (h *PermissionHandler) CreatePermission(c echo.Context) error {
	var req service.PermissionInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Name == "" || req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and key are required")
	}

	p, err := h.Permissions.CreatePermission(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PermissionHandler) GetPermission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Permissions.GetPermission(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PermissionHandler) UpdatePermission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.PermissionInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	p, err := h.Permissions.UpdatePermission(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PermissionHandler) DeletePermission(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Permissions.DeletePermission(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PermissionHandler) ListPermissions(c echo.Context) error {
	perms, err := h.Permissions.ListPermissions(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, perms)
}
