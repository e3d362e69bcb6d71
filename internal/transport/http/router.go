package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmarkhas/orderflow/internal/handlers"
	authmw "github.com/dmarkhas/orderflow/internal/middleware/auth"
	"github.com/dmarkhas/orderflow/internal/service"
)

type Deps struct {
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	OrderHandler      *handlers.OrderHandler
	RoleHandler       *handlers.RoleHandler
	PermissionHandler *handlers.PermissionHandler
	SearchHandler     *handlers.SearchHandler
	MW                *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "pong"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/validate", d.AuthHandler.Validate)
	auth.GET("/me", d.AuthHandler.Me, d.MW.RequireAuth)
	auth.POST("/cleanup", d.AuthHandler.Cleanup, d.MW.RequireAuth, d.MW.RequireRole(service.RoleAdmin))

	users := v1.Group("/users")
	users.POST("", d.UserHandler.CreateUser)
	users.GET("", d.UserHandler.ListUsers, d.MW.RequireAuth, d.MW.RequirePermission("user:list"))
	users.GET("/:id", d.UserHandler.GetUser, d.MW.RequireAuth)
	users.PUT("/:id", d.UserHandler.UpdateUser, d.MW.RequireAuth)
	users.DELETE("/:id", d.UserHandler.DeleteUser, d.MW.RequireAuth)

	orders := v1.Group("/orders", d.MW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder, d.MW.RequirePermission("order:create"))
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/me", d.OrderHandler.ListMyOrders)
	orders.GET("/search", d.SearchHandler.SearchOrders, d.MW.RequireRole(service.RoleAdmin))
	orders.GET("/user/:user_id", d.OrderHandler.ListUserOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PUT("/:id", d.OrderHandler.UpdateOrder)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateOrderStatus, d.MW.RequireRole(service.RoleAdmin))

	roles := v1.Group("/roles", d.MW.RequireAuth)
	roles.POST("", d.RoleHandler.CreateRole, d.MW.RequirePermission("role:create"))
	roles.GET("", d.RoleHandler.ListRoles, d.MW.RequirePermission("role:list"))
	roles.GET("/:id", d.RoleHandler.GetRole, d.MW.RequirePermission("role:read"))
	roles.PUT("/:id", d.RoleHandler.UpdateRole, d.MW.RequirePermission("role:update"))
	roles.DELETE("/:id", d.RoleHandler.DeleteRole, d.MW.RequirePermission("role:delete"))
	roles.GET("/:id/permissions", d.RoleHandler.RolePermissions, d.MW.RequirePermission("role:read_permissions"))
	roles.POST("/:id/permissions/:permission_id", d.RoleHandler.AssignPermission, d.MW.RequireRole(service.RoleAdmin))
	roles.DELETE("/:id/permissions/:permission_id", d.RoleHandler.RemovePermission, d.MW.RequireRole(service.RoleAdmin))

	permissions := v1.Group("/permissions", d.MW.RequireAuth)
	permissions.POST("", d.PermissionHandler.CreatePermission, d.MW.RequirePermission("permission:create"))
	permissions.GET("", d.PermissionHandler.ListPermissions, d.MW.RequirePermission("permission:list"))
	permissions.GET("/:id", d.PermissionHandler.GetPermission, d.MW.RequirePermission("permission:read"))
	permissions.PUT("/:id", d.PermissionHandler.UpdatePermission, d.MW.RequirePermission("permission:update"))
	permissions.DELETE("/:id", d.PermissionHandler.DeletePermission, d.MW.RequirePermission("permission:delete"))
}
