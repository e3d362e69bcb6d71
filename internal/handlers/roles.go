package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/service"
)

type RoleHandler struct {
	Roles *service.RoleService
}

func (h *RoleHandler) CreateRole(c echo.Context) error {
	var req service.RoleInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Name == "" || req.Key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and key are required")
	}

	role, err := h.Roles.CreateRole(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) GetRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	role, err := h.Roles.GetRole(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) UpdateRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req service.RoleInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	role, err := h.Roles.UpdateRole(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) DeleteRole(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Roles.DeleteRole(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) ListRoles(c echo.Context) error {
	roles, err := h.Roles.ListRoles(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) RolePermissions(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	perms, err := h.Roles.RolePermissions(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, perms)
}

func (h *RoleHandler) AssignPermission(c echo.Context) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	permissionID, err := parseID(c, "permission_id")
	if err != nil {
		return err
	}

	if err := h.Roles.AssignPermission(c.Request().Context(), roleID, permissionID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RoleHandler) RemovePermission(c echo.Context) error {
	roleID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	permissionID, err := parseID(c, "permission_id")
	if err != nil {
		return err
	}

	if err := h.Roles.RemovePermission(c.Request().Context(), roleID, permissionID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
