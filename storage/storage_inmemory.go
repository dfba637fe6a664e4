package storage

import (
	"sync"

	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
)

var _ Storage = (*InMemoryStorage)(nil)

// InMemoryStorage keeps values for the lifetime of the process, the same
// scope a browser tab gives its session storage.
type InMemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemory creates an empty in-memory storage
func NewInMemory() *InMemoryStorage {
	return &InMemoryStorage{
		values: make(map[string]string),
	}
}

func (s *InMemoryStorage) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", clienterrors.Wrapf(ErrNotFound, "[storage InMemory Get] %q", key)
	}
	return value, nil
}

func (s *InMemoryStorage) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *InMemoryStorage) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *InMemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]string)
	return nil
}
