// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios, for
// example telling a missing movie apart from one owned by a
// different user.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers decide how much of that
// to reveal to the client.
var ErrForbidden = errors.New("forbidden")
