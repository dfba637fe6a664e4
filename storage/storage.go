package storage

import (
	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
)

// Fixed keys shared by the session store and the credential holder.
const (
	SessionKey = "session"
	TokenKey   = "token"
)

var (
	ErrNotFound = clienterrors.ErrNotFound
	ErrEmptyKey = clienterrors.ErrEmptyKey
)

// Storage is the session-scoped key/value store backing the durable mirror
// of the client session and the auth token.
type Storage interface {
	// Get returns the value for key, or ErrNotFound
	Get(key string) (string, error)

	// Set creates or replaces the value for key
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Clear deletes every key
	Clear() error
}
