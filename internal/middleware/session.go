// Package middleware contains reusable HTTP middleware functions.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/session"
)

// principalKey is the context key the loaded principal is stored under.
const principalKey = "principal"

// LoadSession returns an Echo middleware that resolves the session cookie
// into a principal for the current request. It verifies the cookie token's
// signature and expiry, then rehydrates the principal from the session
// store. Every failure mode leaves the request anonymous; this middleware
// never rejects a request.
func LoadSession(store session.Store, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(session.CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}
			sid, err := session.ParseCookieToken(secret, ck.Value)
			if err != nil {
				return next(c)
			}
			p, err := store.Get(c.Request().Context(), sid)
			if err != nil {
				return next(c)
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// RequireAuth redirects anonymous requests to the login page. It must run
// after LoadSession.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := Principal(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

// Principal returns the authenticated principal for the request, if any.
func Principal(c echo.Context) (session.Principal, bool) {
	p, ok := c.Get(principalKey).(session.Principal)
	return p, ok
}
