package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/service/search"
	"github.com/dmarkhas/orderflow/internal/util"
)

type SearchHandler struct {
	Search *search.Service
}

func (h *SearchHandler) SearchOrders(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, orders, err := h.Search.SearchOrders(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "orders": orders})
}
