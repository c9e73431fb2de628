package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the browser cookie holding the signed session token.
const CookieName = "kinolist_session"

// ErrBadCookie is returned for cookie values that fail signature or expiry
// checks. Callers treat it the same as having no cookie at all.
var ErrBadCookie = errors.New("invalid session cookie")

// CookieToken is a signed HS256 JWT whose only payload is the session ID.
// Signing the ID keeps the cookie tamper-evident while the principal itself
// stays server-side.
type CookieToken struct {
	Value string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewCookieToken signs a token for the given session ID. The expiry matches
// the session TTL so cookie and store record lapse together.
func NewCookieToken(secret, sid string, ttl time.Duration) (CookieToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return CookieToken{}, err
	}
	return CookieToken{Value: signed, Exp: exp}, nil
}

// ParseCookieToken verifies the signature and expiry of a cookie value and
// returns the session ID it carries.
func ParseCookieToken(secret, value string) (string, error) {
	tok, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadCookie
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrBadCookie
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrBadCookie
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrBadCookie
	}
	return sid, nil
}

// NewCookie builds the session cookie for a signed token.
func NewCookie(tok CookieToken) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    tok.Value,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie builds a cookie that makes the browser drop the session.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
