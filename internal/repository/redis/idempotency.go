package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idemLockValue    = "LOCK"
	idemResultPrefix = "RES:"
)

// IdempotencyStore remembers the response of a booking request under its
// Idempotency-Key, so a retried request does not book the seats twice.
type IdempotencyStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewIdempotencyStore(rdb redis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// AcquireLock marks key as in progress. It returns false when another
// request already holds the key or has stored a result for it.
func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, idemLockValue, lockTTL).Result()
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key, jsonPayload string) error {
	return s.rdb.Set(ctx, key, idemResultPrefix+jsonPayload, s.ttl).Err()
}

func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	payload, ok := strings.CutPrefix(v, idemResultPrefix)
	if !ok {
		return "", false, nil
	}

	return payload, true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
