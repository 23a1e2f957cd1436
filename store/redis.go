package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"safesphere/models"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions as JSON values whose TTL matches the
// session expiry, so Redis evicts them on its own.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisSessionStore) CreateSession(ctx context.Context, sess models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Expired(s.now()) {
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
