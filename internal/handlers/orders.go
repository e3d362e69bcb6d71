package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/middleware/auth"
	"github.com/dmarkhas/orderflow/internal/models"
	"github.com/dmarkhas/orderflow/internal/mykafka"
	"github.com/dmarkhas/orderflow/internal/service"
	"github.com/dmarkhas/orderflow/internal/service/search"
)

type OrderHandler struct {
	Orders   *service.OrderService
	Authz    *service.AuthzService
	Producer mykafka.Publisher
	Search   *search.Service
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, mykafka.TopicOrderEvents, fmt.Sprint(event["order_id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) index(c echo.Context, order *models.Order) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Search.IndexOrder(ctx, order); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req service.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	order, err := h.Orders.CreateOrder(c.Request().Context(), identity.UserID, req)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":       "order_created",
		"order_id":   order.ID,
		"order_code": order.OrderCode,
		"user_id":    order.UserID,
	})
	h.index(c, order)

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if err := h.requireOwnership(c, order.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if err := h.requireOwnership(c, order.UserID); err != nil {
		return err
	}

	var req service.UpdateOrderInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Status != nil && !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order status")
	}

	updated, err := h.Orders.UpdateOrder(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	h.index(c, updated)

	return c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.Orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if err := h.requireOwnership(c, order.UserID); err != nil {
		return err
	}

	if err := h.Orders.DeleteOrder(c.Request().Context(), id); err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{"type": "order_deleted", "order_id": id})

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Search.DeleteOrder(ctx, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListOrders shows admins everything and everyone else their own rows.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), 10)

	var (
		orders *service.OrderPage
		err    error
	)
	if h.Authz.HasRole(identity, service.RoleAdmin) {
		orders, err = h.Orders.ListOrders(c.Request().Context(), page, perPage)
	} else {
		orders, err = h.Orders.ListUserOrders(c.Request().Context(), identity.UserID, page, perPage)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), 10)

	orders, err := h.Orders.ListUserOrders(c.Request().Context(), identity.UserID, page, perPage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListUserOrders(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	if err := h.requireOwnership(c, userID); err != nil {
		return err
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	perPage := parseIntDefault(c.QueryParam("per_page"), 10)

	orders, err := h.Orders.ListUserOrders(c.Request().Context(), userID, page, perPage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Orders.UpdateOrderStatus(c.Request().Context(), id, status)
	if err != nil {
		return httpError(err)
	}

	h.publish(c, map[string]any{
		"type":     "order_status_changed",
		"order_id": order.ID,
		"status":   order.Status,
	})
	h.index(c, order)

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) requireOwnership(c echo.Context, ownerID uint) error {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if !h.Authz.OwnsResource(identity, ownerID) {
		return echo.NewHTTPError(http.StatusForbidden, "access denied. You can only access your own orders")
	}
	return nil
}
