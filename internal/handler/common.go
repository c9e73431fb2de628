// Package handler contains the HTTP handlers behind every route.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/middleware"
	"github.com/kinolist/kinolist/internal/view"
)

// Form-level error messages shared across handlers. Both login failure
// modes must surface the identical string so the response does not reveal
// whether the email exists.
const (
	msgInvalidCredentials = "invalid credentials"
	msgIdentityTaken      = "username or email already taken"
	msgSomethingWrong     = "something went wrong, please try again"
)

// pageFor builds the layout data for the current request, carrying the
// principal when one is logged in.
func pageFor(c echo.Context, title string) view.Page {
	p := view.Page{Title: title}
	if principal, ok := middleware.Principal(c); ok {
		p.User = &principal
	}
	return p
}
