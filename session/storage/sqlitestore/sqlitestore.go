// Package sqlitestore persists session entries in a SQLite key/value table.
package sqlitestore

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
)

var _ session.Storage = (*Store)(nil)

type Store struct {
	db      *sql.DB
	nowTime func() time.Time
}

// New opens (or creates) the database at dbPath and ensures the table exists.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, clinicerrors.Wrapf(err, "[sqlitestore.New] open %s", dbPath)
	}

	ctx := context.Background()
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, clinicerrors.Wrapf(err, "[sqlitestore.New] %s", pragma)
		}
	}

	s := &Store{db: db, nowTime: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, clinicerrors.Wrapf(err, "[sqlitestore.New] migrate")
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS session_entries (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_entries WHERE key = ?`, key).Scan(&value)
	if clinicerrors.Is(err, sql.ErrNoRows) {
		return nil, clinicerrors.ErrNotFound
	}
	if err != nil {
		return nil, clinicerrors.Wrapf(err, "[sqlitestore.Get] %s", key)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.nowTime().Unix())
	return clinicerrors.Wrapf(err, "[sqlitestore.Set] %s", key)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_entries WHERE key = ?`, key)
	return clinicerrors.Wrapf(err, "[sqlitestore.Remove] %s", key)
}
