// Package redisstore persists session entries in Redis with an optional TTL.
package redisstore

import (
	"context"
	"time"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/redis/go-redis/v9"
)

var _ session.Storage = (*Store)(nil)

type Store struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

// New wraps client. Keys are stored as prefix+key; a ttl of zero keeps
// entries until removed.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{redis: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(key string) string {
	return s.prefix + key
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.redis.Get(ctx, s.key(key)).Bytes()
	if clinicerrors.Is(err, redis.Nil) {
		return nil, clinicerrors.ErrNotFound
	}
	if err != nil {
		return nil, clinicerrors.Wrapf(err, "[redisstore.Get] %s", key)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.redis.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return clinicerrors.Wrapf(err, "[redisstore.Set] %s", key)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.key(key)).Err(); err != nil {
		return clinicerrors.Wrapf(err, "[redisstore.Remove] %s", key)
	}
	return nil
}
