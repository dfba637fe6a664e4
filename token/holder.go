package token

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-scenario-client/storage"
)

// Holder owns the single auth token of a session. Implementations must read
// the token fresh on every call so a request always uses the stored value at
// issue time.
type Holder interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

var _ Holder = (*StorageHolder)(nil)

// StorageHolder keeps the token under storage.TokenKey
type StorageHolder struct {
	storage storage.Storage
}

func NewStorageHolder(s storage.Storage) *StorageHolder {
	return &StorageHolder{storage: s}
}

// Token returns the stored token, or "" when unauthenticated
func (h *StorageHolder) Token() string {
	value, err := h.storage.Get(storage.TokenKey)
	if err != nil {
		return ""
	}
	return value
}

// SetToken replaces the stored token. An empty token clears it.
func (h *StorageHolder) SetToken(token string) error {
	if token == "" {
		return h.Clear()
	}
	if err := h.storage.Set(storage.TokenKey, token); err != nil {
		return fmt.Errorf("[token SetToken] %w", err)
	}
	return nil
}

func (h *StorageHolder) Clear() error {
	if err := h.storage.Remove(storage.TokenKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("[token Clear] %w", err)
	}
	return nil
}
