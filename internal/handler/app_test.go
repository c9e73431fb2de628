package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kinolist/kinolist/internal/config"
	"github.com/kinolist/kinolist/internal/middleware"
	"github.com/kinolist/kinolist/internal/repository"
	"github.com/kinolist/kinolist/internal/session"
	"github.com/kinolist/kinolist/internal/view"
)

var (
	alice = session.Principal{UserID: 1, Username: "alice", Email: "alice@example.com"}
	bob   = session.Principal{UserID: 2, Username: "bob", Email: "bob@example.com"}
)

// testApp runs the handlers behind a real echo instance wired the same way
// the router wires them in production, with sqlmock behind the repositories
// and an in-memory session store.
type testApp struct {
	e     *echo.Echo
	mock  sqlmock.Sqlmock
	store *session.MemoryStore
	cfg   config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	cfg := config.Config{
		SessionSecret:   "test-secret-0123456789",
		SessionTTLHours: 1,
		BcryptCost:      bcrypt.MinCost,
	}
	store := session.NewMemoryStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Renderer = renderer
	e.Use(middleware.LoadSession(store, cfg.SessionSecret))

	auth := NewAuthHandler(cfg, repository.NewUserRepo(db), store, logger)
	movies := NewMovieHandler(repository.NewMovieRepo(db), logger)

	e.GET("/", Home)
	e.GET("/healthz", Health)
	e.GET("/register", auth.ShowRegister)
	e.POST("/register", auth.Register)
	e.GET("/login", auth.ShowLogin)
	e.POST("/login", auth.Login)
	e.GET("/logout", auth.Logout)
	e.GET("/movies", movies.ListMovies)
	e.GET("/movies/:id", movies.ShowMovie)

	authed := e.Group("", middleware.RequireAuth)
	authed.GET("/dashboard", movies.Dashboard)
	authed.GET("/movies/add", movies.ShowAddMovie)
	authed.POST("/movies/add", movies.AddMovie)
	authed.GET("/movies/:id/edit", movies.ShowEditMovie)
	authed.POST("/movies/:id/edit", movies.EditMovie)
	authed.POST("/movies/:id/delete", movies.DeleteMovie)

	return &testApp{e: e, mock: mock, store: store, cfg: cfg}
}

// loginAs plants a session in the store and returns the signed cookie a
// browser would hold after logging in.
func (app *testApp) loginAs(t *testing.T, p session.Principal) *http.Cookie {
	t.Helper()
	sid, err := app.store.Create(context.Background(), p)
	require.NoError(t, err)
	tok, err := session.NewCookieToken(app.cfg.SessionSecret, sid, time.Hour)
	require.NoError(t, err)
	return session.NewCookie(tok)
}

func (app *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	return rec
}

func movieColumns() []string {
	return []string{
		"id", "owner_id", "name", "description", "year", "genres",
		"rating", "duration", "created_at", "updated_at", "username",
	}
}

// movieRows builds a result set holding a single movie owned by p.
func movieRows(p session.Principal, id uint64, name string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(movieColumns()).
		AddRow(id, p.UserID, name, "A movie about things.", 2021, []byte(`["Drama"]`),
			8.5, 121, now, now, p.Username)
}
