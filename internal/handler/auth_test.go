package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kinolist/kinolist/internal/session"
	"github.com/kinolist/kinolist/internal/utils"
)

const (
	qUserExists  = `SELECT EXISTS(SELECT 1 FROM users WHERE username=? OR email=?)`
	qUserByEmail = `SELECT id,username,email,password_hash,created_at FROM users WHERE email=? LIMIT 1`
)

func userRow(p session.Principal, passwordHash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
		AddRow(p.UserID, p.Username, p.Email, passwordHash, time.Now())
}

func TestShowRegister(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.get("/register")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/register"`)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			name:    "missing username",
			form:    url.Values{"username": {""}, "email": {"new@example.com"}, "password": {"secret1"}},
			wantMsg: "must be provided",
		},
		{
			name:    "malformed email",
			form:    url.Values{"username": {"newcomer"}, "email": {"not-an-email"}, "password": {"secret1"}},
			wantMsg: "must be a valid email address",
		},
		{
			name:    "short password",
			form:    url.Values{"username": {"newcomer"}, "email": {"new@example.com"}, "password": {"12345"}},
			wantMsg: "must be at least 6 characters",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)

			rec := app.postForm("/register", tc.form)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantMsg)
			// No expectations were queued: a store call would have failed
			// the request instead of re-rendering the form.
			assert.NoError(t, app.mock.ExpectationsWereMet())
		})
	}
}

func TestRegisterEchoesInputBack(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.postForm("/register", url.Values{
		"username": {"newcomer"},
		"email":    {"broken"},
		"password": {"secret1"},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="newcomer"`)
	assert.Contains(t, body, `value="broken"`)
	assert.NotContains(t, body, "secret1")
}

func TestRegisterConflict(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	app.mock.ExpectQuery(regexp.QuoteMeta(qUserExists)).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := app.postForm("/register", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"secret1"},
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), msgIdentityTaken)
	assert.Contains(t, rec.Body.String(), `value="alice"`)
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestRegisterSuccess(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	app.mock.ExpectQuery(regexp.QuoteMeta(qUserExists)).
		WithArgs("newcomer", "new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	app.mock.ExpectExec("INSERT INTO users").
		WithArgs("newcomer", "new@example.com", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	rec := app.postForm("/register", url.Values{
		"username": {"newcomer"},
		"email":    {"New@Example.com"}, // normalized before it reaches the store
		"password": {"secret1"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?registered=1", rec.Header().Get("Location"))
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestRegisterLosesInsertRace(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	app.mock.ExpectQuery(regexp.QuoteMeta(qUserExists)).
		WithArgs("newcomer", "new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	app.mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'newcomer' for key 'users.username'"))

	rec := app.postForm("/register", url.Values{
		"username": {"newcomer"},
		"email":    {"new@example.com"},
		"password": {"secret1"},
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), msgIdentityTaken)
}

// Unknown email and wrong password must be indistinguishable: same status,
// byte-identical page.
func TestLoginRejectsUniformly(t *testing.T) {
	t.Parallel()

	form := url.Values{"email": {"alice@example.com"}, "password": {"wrong-pass"}}

	unknown := newTestApp(t)
	unknown.mock.ExpectQuery(regexp.QuoteMeta(qUserByEmail)).
		WithArgs("alice@example.com").
		WillReturnError(sql.ErrNoRows)
	recUnknown := unknown.postForm("/login", form)

	hash, err := utils.HashPassword("the-real-password", bcrypt.MinCost)
	require.NoError(t, err)
	wrongPass := newTestApp(t)
	wrongPass.mock.ExpectQuery(regexp.QuoteMeta(qUserByEmail)).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(alice, hash))
	recWrongPass := wrongPass.postForm("/login", form)

	require.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	require.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	assert.Contains(t, recUnknown.Body.String(), msgInvalidCredentials)
	assert.Equal(t, recUnknown.Body.String(), recWrongPass.Body.String())
}

func TestLoginValidation(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.postForm("/login", url.Values{"email": {""}, "password": {""}})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be provided")
	assert.NoError(t, app.mock.ExpectationsWereMet())
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	hash, err := utils.HashPassword("letmein1", bcrypt.MinCost)
	require.NoError(t, err)
	app.mock.ExpectQuery(regexp.QuoteMeta(qUserByEmail)).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(alice, hash))

	rec := app.postForm("/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"letmein1"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.True(t, cookie.HttpOnly)

	// The cookie leads back to the principal, and only to the principal.
	sid, err := session.ParseCookieToken(app.cfg.SessionSecret, cookie.Value)
	require.NoError(t, err)
	p, err := app.store.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, alice, p)
	assert.NotContains(t, cookie.Value, "alice", "cookie must not carry identity data")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("destroys the session and expires the cookie", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(t)
		cookie := app.loginAs(t, alice)

		rec := app.get("/logout", cookie)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		var cleared *http.Cookie
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == session.CookieName {
				cleared = ck
			}
		}
		require.NotNil(t, cleared)
		assert.Less(t, cleared.MaxAge, 0)

		sid, err := session.ParseCookieToken(app.cfg.SessionSecret, cookie.Value)
		require.NoError(t, err)
		_, err = app.store.Get(context.Background(), sid)
		assert.ErrorIs(t, err, session.ErrNotFound)

		// The old cookie no longer authenticates.
		rec = app.get("/dashboard", cookie)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("without a session", func(t *testing.T) {
		t.Parallel()
		app := newTestApp(t)

		rec := app.get("/logout")

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})
}
