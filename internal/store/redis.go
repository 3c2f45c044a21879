// internal/store/redis.go
//
// Redis-backed Store. Each session is one JSON string under "session:<id>";
// the key TTL replaces the sweeper the SQLite backend needs.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/robalobadob/wordle-helper/internal/session"
)

const sessionKeyPrefix = "session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and checks the server answers.
// A zero ttl keeps sessions forever.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(client, ttl), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (that *redisStore) Save(ctx context.Context, s *session.Session) error {
	b, err := session.Encode(s)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	if err := that.client.Set(ctx, sessionKeyPrefix+s.ID, b, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (that *redisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session.Decode(response)
}

func (that *redisStore) Delete(ctx context.Context, id string) error {
	n, err := that.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (that *redisStore) Close() error { return that.client.Close() }
