// Package session implements server-side login sessions. A session is an
// opaque ID mapped to the authenticated principal in a backing store; the
// browser only ever holds the signed cookie token carrying that ID.
package session

import (
	"context"
	"errors"
)

// Principal is the authenticated identity attached to a session. It carries
// only what handlers and templates need; the password hash never leaves the
// users table.
type Principal struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ErrNotFound is returned when a session ID has no live record, either
// because it never existed, expired, or was destroyed at logout.
var ErrNotFound = errors.New("session not found")

// Store persists principals keyed by opaque session IDs.
type Store interface {
	// Create stores the principal under a fresh session ID and returns it.
	Create(ctx context.Context, p Principal) (string, error)
	// Get loads the principal for the given session ID.
	Get(ctx context.Context, sid string) (Principal, error)
	// Delete destroys the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, sid string) error
}
