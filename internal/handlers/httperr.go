package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/service"
	"github.com/dmarkhas/orderflow/internal/tokens"
)

// httpError maps the service error taxonomy onto status codes: auth
// failures 401, authz 403, missing entities 404, conflicting state 400.
func httpError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, tokens.ErrInvalidToken),
		errors.Is(err, tokens.ErrTokenExpired),
		errors.Is(err, service.ErrRefreshExpired),
		errors.Is(err, repo.ErrTokenNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, repo.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrDuplicateKey),
		errors.Is(err, repo.ErrDuplicateAssignment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
