package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avoronkov/auth_service/internal/middleware"
)

type Deps struct {
	AuthHandler *AuthHTTP
	UserHandler *UserHTTP
	RoleHandler *RoleHTTP
	Guard       *middleware.Guard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh, d.Guard.RequireRefresh)
	auth.POST("/logout", d.AuthHandler.Logout, d.Guard.RequireAuth)

	users := v1.Group("/users")
	users.POST("/signup", d.UserHandler.Signup)
	users.GET("/me", d.UserHandler.Me, d.Guard.RequireAuth)
	users.PUT("/change_password", d.UserHandler.ChangePassword, d.Guard.RequireAuth)
	users.GET("/history", d.UserHandler.History, d.Guard.RequireAuth)

	roles := v1.Group("/roles", d.Guard.RequireAuth, middleware.RequireAdmin)
	roles.GET("", d.RoleHandler.List)
	roles.POST("", d.RoleHandler.Create)
	roles.PUT("/:id", d.RoleHandler.Update)
	roles.DELETE("/:id", d.RoleHandler.Delete)
	roles.POST("/attach", d.RoleHandler.Attach)
	roles.POST("/detach", d.RoleHandler.Detach)
}
