package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/config"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := connectRedis(context.Background(), &config.Config{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
}

func TestConnectRedis_PingFailureClosesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	rdb, err := connectRedis(context.Background(), &config.Config{RedisAddr: addr})
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
