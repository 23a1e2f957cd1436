package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/models"
)

func newTestRedisSessionStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisSessionStore(t)

	sess := models.Session{
		ID:        "token-id",
		UserID:    3,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().UTC().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, s.CreateSession(ctx, sess))
	assert.True(t, mr.Exists("session:token-id"))
	assert.Greater(t, mr.TTL("session:token-id"), 59*time.Minute)

	got, err := s.GetSession(ctx, "token-id")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, s.DeleteSession(ctx, "token-id"))
	_, err = s.GetSession(ctx, "token-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionStore_ExpiresWithTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisSessionStore(t)

	require.NoError(t, s.CreateSession(ctx, models.Session{ID: "short", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err := s.GetSession(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionStore_SkipsAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisSessionStore(t)

	require.NoError(t, s.CreateSession(ctx, models.Session{ID: "stale", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.False(t, mr.Exists("session:stale"))
}

func TestRedisSessionStore_MissingKey(t *testing.T) {
	s, _ := newTestRedisSessionStore(t)

	_, err := s.GetSession(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
