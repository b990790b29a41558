package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nuwanperera/corebank/pkg"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "corebank:session:"

// SessionStore holds opaque bearer tokens. Sessions expire by TTL; logout
// deletes the token eagerly.
type SessionStore interface {
	Create(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Delete(ctx context.Context, token string) error
}

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Create(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKeyPrefix+token, userID.String(), ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "session not found", err)
	}
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, pkg.NewAppError(pkg.ErrUnauthenticatedCode, "malformed session", err)
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}
