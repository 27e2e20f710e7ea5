package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"nutrivision-go/internal/apperr"
)

const keyPrefix = "nutrivision:session:"

// RedisStore shares sessions between server instances. Keys expire after
// ttl so abandoned sessions are collected; expiry itself is decided by
// the Controller from LastActive.
type RedisStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewRedisStore(rdb redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get session")
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	// Keep the key around a little past the idle threshold so that a late
	// request still reads "expired" rather than "unknown".
	if err := r.rdb.Set(ctx, key(s.ID), raw, r.ttl+time.Minute).Err(); err != nil {
		return errors.Wrap(err, "redis set session")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, key(id)).Err(); err != nil {
		return errors.Wrap(err, "redis delete session")
	}
	return nil
}

// Connect builds a client and pings it once.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "connect redis %s", addr)
	}
	return rdb, nil
}
