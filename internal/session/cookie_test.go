package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestCookieTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewCookieToken(testSecret, "abc-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)

	sid, err := ParseCookieToken(testSecret, tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", sid)
}

func TestParseCookieToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects wrong secret", func(t *testing.T) {
		t.Parallel()
		tok, err := NewCookieToken(testSecret, "abc-123", time.Hour)
		require.NoError(t, err)

		_, err = ParseCookieToken("other-secret", tok.Value)
		assert.ErrorIs(t, err, ErrBadCookie)
	})

	t.Run("rejects tampered value", func(t *testing.T) {
		t.Parallel()
		tok, err := NewCookieToken(testSecret, "abc-123", time.Hour)
		require.NoError(t, err)

		_, err = ParseCookieToken(testSecret, tok.Value+"x")
		assert.ErrorIs(t, err, ErrBadCookie)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()
		tok, err := NewCookieToken(testSecret, "abc-123", -time.Minute)
		require.NoError(t, err)

		_, err = ParseCookieToken(testSecret, tok.Value)
		assert.ErrorIs(t, err, ErrBadCookie)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		_, err := ParseCookieToken(testSecret, "not-a-jwt")
		assert.ErrorIs(t, err, ErrBadCookie)
	})
}

func TestSessionCookies(t *testing.T) {
	t.Parallel()

	tok, err := NewCookieToken(testSecret, "abc-123", time.Hour)
	require.NoError(t, err)

	ck := NewCookie(tok)
	assert.Equal(t, CookieName, ck.Name)
	assert.Equal(t, tok.Value, ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, "/", ck.Path)

	gone := ExpiredCookie()
	assert.Equal(t, CookieName, gone.Name)
	assert.Empty(t, gone.Value)
	assert.Negative(t, gone.MaxAge)
}
