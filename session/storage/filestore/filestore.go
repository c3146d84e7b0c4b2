// Package filestore persists each session entry as a file in a folder.
package filestore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
)

var _ session.Storage = (*Store)(nil)

type Store struct {
	folder string
}

// New creates folder if needed.
func New(folder string) (*Store, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, clinicerrors.Wrapf(err, "[filestore.New] mkdir %s", folder)
	}
	return &Store{folder: folder}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.folder, url.PathEscape(key)+".json")
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, clinicerrors.ErrNotFound
	}
	if err != nil {
		return nil, clinicerrors.Wrapf(err, "[filestore.Get] %s", key)
	}
	return data, nil
}

// Set writes through a temp file and rename so readers never see a partial entry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.folder, ".entry-*")
	if err != nil {
		return clinicerrors.Wrapf(err, "[filestore.Set] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return clinicerrors.Wrapf(err, "[filestore.Set] write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return clinicerrors.Wrapf(err, "[filestore.Set] close %s", key)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return clinicerrors.Wrapf(err, "[filestore.Set] rename %s", key)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return clinicerrors.Wrapf(err, "[filestore.Remove] %s", key)
	}
	return nil
}
