package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/config"
	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/session"
	"github.com/kinolist/kinolist/internal/utils"
	"github.com/kinolist/kinolist/internal/validator"
	"github.com/kinolist/kinolist/internal/view"
)

// AuthHandler bundles dependencies for the register, login and logout pages.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions session.Store
	Log      *slog.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s session.Store, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Log: log}
}

func (h *AuthHandler) sessionTTL() time.Duration {
	return time.Duration(h.Cfg.SessionTTLHours) * time.Hour
}

// ShowRegister: render an empty registration form.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	return c.Render(http.StatusOK, "register", view.RegisterPage{Page: pageFor(c, "Register")})
}

// Register: validate the form, reject taken identities, create the account.
func (h *AuthHandler) Register(c echo.Context) error {
	form := view.RegisterForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
	}
	password := c.FormValue("password")

	v := validator.New()
	v.Check(form.Username != "", "username", "must be provided")
	v.Check(form.Email != "", "email", "must be provided")
	if form.Email != "" {
		v.Check(validator.Matches(form.Email, validator.EmailRX), "email", "must be a valid email address")
	}
	v.Check(len(password) >= 6, "password", "must be at least 6 characters")
	v.Check(len(password) <= 72, "password", "must be at most 72 characters")
	if !v.Valid() {
		form.Errors = v.Errors
		return h.renderRegister(c, http.StatusUnprocessableEntity, form)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	taken, err := h.Users.Exists(ctx, form.Username, form.Email)
	if err != nil {
		h.Log.Error("register: existence check failed", "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderRegister(c, http.StatusInternalServerError, form)
	}
	if taken {
		form.Errors = map[string]string{"form": msgIdentityTaken}
		return h.renderRegister(c, http.StatusConflict, form)
	}

	if _, err := h.Users.Create(ctx, form.Username, form.Email, password, h.Cfg.BcryptCost); err != nil {
		// A concurrent registration can slip past the existence check and
		// trip the unique index instead.
		if err == repository.ErrUserExists {
			form.Errors = map[string]string{"form": msgIdentityTaken}
			return h.renderRegister(c, http.StatusConflict, form)
		}
		h.Log.Error("register: create user failed", "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderRegister(c, http.StatusInternalServerError, form)
	}

	h.Log.Info("user registered", "username", form.Username)
	return c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (h *AuthHandler) renderRegister(c echo.Context, code int, form view.RegisterForm) error {
	return c.Render(code, "register", view.RegisterPage{Page: pageFor(c, "Register"), Form: form})
}

// ShowLogin: render the login form, with a notice right after registration.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login", view.LoginPage{
		Page:       pageFor(c, "Log in"),
		Registered: c.QueryParam("registered") == "1",
	})
}

// Login: verify credentials, create a server-side session, set the cookie.
// Unknown email and wrong password take the same path so the response never
// reveals which one failed.
func (h *AuthHandler) Login(c echo.Context) error {
	form := view.LoginForm{
		Email: strings.ToLower(strings.TrimSpace(c.FormValue("email"))),
	}
	password := c.FormValue("password")

	v := validator.New()
	v.Check(form.Email != "", "email", "must be provided")
	if form.Email != "" {
		v.Check(validator.Matches(form.Email, validator.EmailRX), "email", "must be a valid email address")
	}
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		form.Errors = v.Errors
		return h.renderLogin(c, http.StatusUnprocessableEntity, form)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, form.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return h.rejectCredentials(c, form)
		}
		h.Log.Error("login: user lookup failed", "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderLogin(c, http.StatusInternalServerError, form)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return h.rejectCredentials(c, form)
	}

	sid, err := h.Sessions.Create(ctx, session.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		h.Log.Error("login: create session failed", "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderLogin(c, http.StatusInternalServerError, form)
	}
	tok, err := session.NewCookieToken(h.Cfg.SessionSecret, sid, h.sessionTTL())
	if err != nil {
		h.Log.Error("login: sign session cookie failed", "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderLogin(c, http.StatusInternalServerError, form)
	}

	c.SetCookie(session.NewCookie(tok))
	h.Log.Info("user logged in", "user_id", u.ID)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) rejectCredentials(c echo.Context, form view.LoginForm) error {
	form.Errors = map[string]string{"form": msgInvalidCredentials}
	return h.renderLogin(c, http.StatusUnauthorized, form)
}

func (h *AuthHandler) renderLogin(c echo.Context, code int, form view.LoginForm) error {
	return c.Render(code, "login", view.LoginPage{Page: pageFor(c, "Log in"), Form: form})
}

// Logout: destroy the server-side session and expire the cookie. Safe to
// call without a session; the outcome is the same either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
		if sid, err := session.ParseCookieToken(h.Cfg.SessionSecret, ck.Value); err == nil {
			if err := h.Sessions.Delete(c.Request().Context(), sid); err != nil {
				h.Log.Error("logout: destroy session failed", "error", err)
			}
		}
	}
	c.SetCookie(session.ExpiredCookie())
	return c.Redirect(http.StatusSeeOther, "/login")
}
