// Package storage opens the configured session.Storage backend.
package storage

import (
	"context"
	"io"
	"path/filepath"

	"github.com/jrsteele09/go-clinic-console/internal/config"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/session/storage/filestore"
	"github.com/jrsteele09/go-clinic-console/session/storage/memstore"
	"github.com/jrsteele09/go-clinic-console/session/storage/redisstore"
	"github.com/jrsteele09/go-clinic-console/session/storage/sqlitestore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the backend named by the session configuration, rooted in
// dataFolder where the backend is on disk. The closer releases its resources.
func Open(ctx context.Context, cfg config.SessionConfig, dataFolder string) (session.Storage, io.Closer, error) {
	switch kind := cfg.GetSessionStore(); kind {
	case config.StoreMemory:
		return memstore.New(), nopCloser{}, nil

	case config.StoreFile:
		s, err := filestore.New(filepath.Join(dataFolder, "sessions"))
		if err != nil {
			return nil, nil, clinicerrors.Wrapf(err, "[storage.Open] file")
		}
		return s, nopCloser{}, nil

	case config.StoreSQLite:
		s, err := sqlitestore.New(filepath.Join(dataFolder, "sessions.db"))
		if err != nil {
			return nil, nil, clinicerrors.Wrapf(err, "[storage.Open] sqlite")
		}
		return s, s, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, clinicerrors.Wrapf(err, "[storage.Open] redis ping %s", cfg.GetRedisAddr())
		}
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("Session storage connected to redis")
		return redisstore.New(client, "clinic:", cfg.GetSessionTTL()), client, nil

	default:
		return nil, nil, clinicerrors.Wrapf(clinicerrors.ErrInvalidRequest, "[storage.Open] unknown session store %q", kind)
	}
}
