package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/handler"
	"github.com/kinolist/kinolist/internal/middleware"
)

// RegisterMovies registers the catalog pages. Browsing is public; the
// dashboard and every page that can change data sit behind RequireAuth.
func RegisterMovies(e *echo.Echo, m *handler.MovieHandler) {
	e.GET("/movies", m.ListMovies)
	e.GET("/movies/:id", m.ShowMovie)

	authed := e.Group("", middleware.RequireAuth)
	authed.GET("/dashboard", m.Dashboard)
	authed.GET("/movies/add", m.ShowAddMovie)
	authed.POST("/movies/add", m.AddMovie)
	authed.GET("/movies/:id/edit", m.ShowEditMovie)
	authed.POST("/movies/:id/edit", m.EditMovie)
	authed.POST("/movies/:id/delete", m.DeleteMovie)
}
