package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/view"
)

// Home: the landing page.
func Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", view.HomePage{Page: pageFor(c, "Welcome")})
}
