// Package router wires handlers to their routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/handler"
	"github.com/kinolist/kinolist/internal/view"
)

// RegisterRoutes registers the pages that need no session: the landing
// page, the health check and the embedded static assets.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Home)
	e.GET("/healthz", handler.Health)
	e.StaticFS("/static", view.StaticFS())
}

// RegisterAuth registers the account pages. None of them sit behind
// RequireAuth: logout is harmless without a session, and the register and
// login pages must stay reachable for anonymous visitors. The credential
// POSTs take the brute-force limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.GET("/register", a.ShowRegister)
	e.POST("/register", a.Register, limit)
	e.GET("/login", a.ShowLogin)
	e.POST("/login", a.Login, limit)
	e.GET("/logout", a.Logout)
}
