package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"
const defaultSessionTTL = 24 * time.Hour

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists sessions outside the process so that a principal
// survives restarts and can be recovered from a cookie alone.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisSessionStore manages sessions in Redis with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore returns a new Redis-backed session store.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

// Create stores a new session for the given user and returns its id.
func (s *RedisSessionStore) Create(ctx context.Context, userID string) (string, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + sessionID
	if err := s.rdb.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return sessionID, nil
}

// Get resolves a session id to its user id and refreshes the TTL.
func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (string, error) {
	key := sessionKeyPrefix + sessionID
	userID, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to refresh session ttl: %w", err)
	}
	return userID, nil
}

// Delete removes a session by id. Deleting an absent session is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
