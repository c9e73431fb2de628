package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kinolist/kinolist/internal/middleware"
	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/view"
)

// MovieHandler bundles dependencies for the catalog pages.
type MovieHandler struct {
	Movies *repository.MovieRepo
	Log    *slog.Logger
}

func NewMovieHandler(m *repository.MovieRepo, log *slog.Logger) *MovieHandler {
	return &MovieHandler{Movies: m, Log: log}
}

// ListMovies: the public catalog, newest first.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		h.Log.Error("movies: list failed", "error", err)
		return err
	}
	return c.Render(http.StatusOK, "movies", view.MoviesPage{
		Page:   pageFor(c, "Movies"),
		Movies: movies,
	})
}

// ShowMovie: one movie's page. Owners additionally see the edit and delete
// controls.
func (h *MovieHandler) ShowMovie(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/movies")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.Redirect(http.StatusSeeOther, "/movies")
		}
		h.Log.Error("movies: load failed", "movie_id", id, "error", err)
		return err
	}

	isOwner := false
	if p, ok := middleware.Principal(c); ok {
		isOwner = p.UserID == m.OwnerID
	}
	return c.Render(http.StatusOK, "movie", view.MoviePage{
		Page:    pageFor(c, m.Name),
		Movie:   m,
		IsOwner: isOwner,
	})
}

// Dashboard: the signed-in user's own movies.
func (h *MovieHandler) Dashboard(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := h.Movies.ListByOwner(ctx, p.UserID)
	if err != nil {
		h.Log.Error("dashboard: list failed", "user_id", p.UserID, "error", err)
		return err
	}
	return c.Render(http.StatusOK, "dashboard", view.DashboardPage{
		Page:   pageFor(c, "Dashboard"),
		Movies: movies,
	})
}

// ShowAddMovie: render an empty movie form.
func (h *MovieHandler) ShowAddMovie(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, view.MovieForm{}, 0)
}

// AddMovie: validate the form and create the movie for the current user,
// then land on the new movie's page.
func (h *MovieHandler) AddMovie(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	form := movieFormFromRequest(c)
	m, v := validateMovieForm(form)
	if !v.Valid() {
		form.Errors = v.Errors
		return h.renderForm(c, http.StatusUnprocessableEntity, form, 0)
	}
	m.OwnerID = p.UserID

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Create(ctx, m); err != nil {
		h.Log.Error("movies: create failed", "user_id", p.UserID, "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderForm(c, http.StatusInternalServerError, form, 0)
	}

	h.Log.Info("movie created", "movie_id", m.ID, "user_id", p.UserID)
	return c.Redirect(http.StatusSeeOther, "/movies/"+strconv.FormatUint(m.ID, 10))
}

// ShowEditMovie: render the form pre-filled with the owned movie.
func (h *MovieHandler) ShowEditMovie(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	id, err := movieID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/movies")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetOwned(ctx, id, p.UserID)
	if err != nil {
		return h.denyMovie(c, id, err)
	}
	return h.renderForm(c, http.StatusOK, movieFormFromMovie(m), id)
}

// EditMovie: ownership first, then validation, then a conditional update
// keyed on both movie and owner so a stale check can never overwrite a
// foreign row.
func (h *MovieHandler) EditMovie(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	id, err := movieID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/movies")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Movies.GetOwned(ctx, id, p.UserID); err != nil {
		return h.denyMovie(c, id, err)
	}

	form := movieFormFromRequest(c)
	m, v := validateMovieForm(form)
	if !v.Valid() {
		form.Errors = v.Errors
		return h.renderForm(c, http.StatusUnprocessableEntity, form, id)
	}
	m.ID = id

	if err := h.Movies.UpdateOwned(ctx, m, p.UserID); err != nil {
		if err == repository.ErrMovieNotFound || err == repository.ErrForbidden {
			return h.denyMovie(c, id, err)
		}
		h.Log.Error("movies: update failed", "movie_id", id, "error", err)
		form.Errors = map[string]string{"form": msgSomethingWrong}
		return h.renderForm(c, http.StatusInternalServerError, form, id)
	}

	h.Log.Info("movie updated", "movie_id", id, "user_id", p.UserID)
	return c.Redirect(http.StatusSeeOther, "/movies/"+strconv.FormatUint(id, 10))
}

// DeleteMovie: one conditional delete keyed on movie and owner, then back
// to the dashboard.
func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	p, ok := middleware.Principal(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	id, err := movieID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/movies")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.DeleteOwned(ctx, id, p.UserID); err != nil {
		return h.denyMovie(c, id, err)
	}

	h.Log.Info("movie deleted", "movie_id", id, "user_id", p.UserID)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *MovieHandler) renderForm(c echo.Context, code int, form view.MovieForm, editID uint64) error {
	title := "Add a movie"
	if editID != 0 {
		title = "Edit movie"
	}
	return c.Render(code, "movie_form", view.MovieFormPage{
		Page:   pageFor(c, title),
		Form:   form,
		EditID: editID,
	})
}

// denyMovie hides the difference between a movie that does not exist and
// one owned by someone else: both bounce to the public catalog.
func (h *MovieHandler) denyMovie(c echo.Context, id uint64, err error) error {
	if err == repository.ErrMovieNotFound || err == repository.ErrForbidden {
		h.Log.Warn("movies: access denied", "movie_id", id, "reason", err.Error())
		return c.Redirect(http.StatusSeeOther, "/movies")
	}
	h.Log.Error("movies: lookup failed", "movie_id", id, "error", err)
	return err
}

func movieID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
