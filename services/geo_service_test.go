package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/models"
)

var (
	marinaBay = models.GeoPoint{Latitude: 1.2834, Longitude: 103.8607}
	rafflesPl = models.GeoPoint{Latitude: 1.2840, Longitude: 103.8514}
	changi    = models.GeoPoint{Latitude: 1.3644, Longitude: 103.9915}
)

func TestHaversineMeters(t *testing.T) {
	assert.InDelta(t, 0, HaversineMeters(marinaBay, marinaBay), 1e-9)

	d := HaversineMeters(marinaBay, rafflesPl)
	assert.InDelta(t, 1037, d, 15)
	assert.InDelta(t, d, HaversineMeters(rafflesPl, marinaBay), 1e-6)
}

func testGeoIndex(t *testing.T, idx GeoIndex) {
	ctx := context.Background()
	require.NoError(t, idx.Update(ctx, 1, marinaBay))
	require.NoError(t, idx.Update(ctx, 2, rafflesPl))
	require.NoError(t, idx.Update(ctx, 3, changi))

	hits, err := idx.Nearby(ctx, marinaBay, 3000)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, int64(1), hits[0].UserID)
	assert.Equal(t, int64(2), hits[1].UserID)
	assert.InDelta(t, 1037, hits[1].DistanceMeters, 15)

	// Moving user 3 next to the center brings them into range
	require.NoError(t, idx.Update(ctx, 3, models.GeoPoint{Latitude: 1.2836, Longitude: 103.8610}))
	hits, err = idx.Nearby(ctx, marinaBay, 3000)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestMemoryGeoIndex(t *testing.T) {
	testGeoIndex(t, NewMemoryGeoIndex())
}

func TestRedisGeoIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testGeoIndex(t, NewRedisGeoIndex(client))
}
