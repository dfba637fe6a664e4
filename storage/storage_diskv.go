package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	clienterrors "github.com/jrsteele09/go-scenario-client/internal/errors"
	"github.com/peterbourgon/diskv"
)

const diskvCacheSize = 64 * 1024

// diskvSubdir is created inside the configured directory; the storage
// never reads or writes outside it.
const diskvSubdir = ".scenario-client"

var _ Storage = (*DiskvStorage)(nil)

// DiskvStorage persists values as flat files in a directory, so a session
// survives between separate runs of the client that share the directory.
type DiskvStorage struct {
	dir string
	d   *diskv.Diskv
}

// NewDiskv opens (or lazily creates) a storage under dir
func NewDiskv(dir string) (*DiskvStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("[storage NewDiskv] directory is required")
	}

	flatTransform := func(s string) []string { return []string{} }

	base := filepath.Join(dir, diskvSubdir)
	return &DiskvStorage{
		dir: base,
		d: diskv.New(diskv.Options{
			BasePath:     base,
			Transform:    flatTransform,
			CacheSizeMax: diskvCacheSize,
		}),
	}, nil
}

// Dir returns the directory the storage writes to
func (s *DiskvStorage) Dir() string {
	return s.dir
}

func (s *DiskvStorage) Get(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	if !s.d.Has(key) {
		return "", clienterrors.Wrapf(ErrNotFound, "[storage Diskv Get] %q", key)
	}

	value, err := s.d.Read(key)
	if err != nil {
		if os.IsNotExist(err) {
			return "", clienterrors.Wrapf(ErrNotFound, "[storage Diskv Get] %q", key)
		}
		return "", clienterrors.Wrapf(err, "[storage Diskv Get] %q", key)
	}
	return string(value), nil
}

func (s *DiskvStorage) Set(key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	return clienterrors.Wrapf(s.d.Write(key, []byte(value)), "[storage Diskv Set] %q", key)
}

func (s *DiskvStorage) Remove(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !os.IsNotExist(err) {
		return clienterrors.Wrapf(err, "[storage Diskv Remove] %q", key)
	}
	return nil
}

// Clear erases every key this storage wrote. Other files in the parent
// directory are left alone.
func (s *DiskvStorage) Clear() error {
	var keys []string
	for key := range s.d.Keys(nil) {
		keys = append(keys, key)
	}
	for _, key := range keys {
		if err := s.d.Erase(key); err != nil && !os.IsNotExist(err) {
			return clienterrors.Wrapf(err, "[storage Diskv Clear] %q", key)
		}
	}
	return nil
}

func validKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("[storage] invalid key %q", key)
	}
	return nil
}
