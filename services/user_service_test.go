package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/models"
	apierrors "safesphere/utils/errors"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")

	name := "Alice Tan"
	updated, err := stack.users.UpdateProfile(ctx, alice, models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Tan", updated.Name)
	assert.Equal(t, alice.Email, updated.Email)
	assert.Nil(t, updated.Phone)

	got, err := stack.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Tan", got.Name)

	_, err = stack.users.GetUser(ctx, 404)
	assert.ErrorIs(t, err, apierrors.ErrUserNotFound)
}

func TestUserService_PingLocation(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")

	updated, err := stack.users.PingLocation(ctx, alice, marinaBay)
	require.NoError(t, err)
	require.NotNil(t, updated.Latitude)
	assert.Equal(t, marinaBay.Latitude, *updated.Latitude)

	_, err = stack.users.PingLocation(ctx, alice, models.GeoPoint{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, apierrors.ErrInvalidCoordinates)
}

func TestUserService_NearbyFriends(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")
	bob := stack.register(t, "Bob", "bob@example.com")
	carol := stack.register(t, "Carol", "carol@example.com")
	dave := stack.register(t, "Dave", "dave@example.com")
	stack.befriend(t, alice, bob)
	stack.befriend(t, alice, dave)

	pings := []struct {
		user  models.User
		point models.GeoPoint
	}{
		{alice, marinaBay},
		{bob, rafflesPl},
		{carol, rafflesPl},
		{dave, changi},
	}
	for _, ping := range pings {
		_, err := stack.users.PingLocation(ctx, ping.user, ping.point)
		require.NoError(t, err)
	}

	nearby, err := stack.users.NearbyFriends(ctx, alice, marinaBay, 0)
	require.NoError(t, err)
	require.Len(t, nearby, 1, "carol is near but not a friend, dave is a friend but far")
	assert.Equal(t, bob.ID, nearby[0].UserID)
	assert.Equal(t, "Bob", nearby[0].Name)
	assert.InDelta(t, 1037, nearby[0].Distance, 15)

	nearby, err = stack.users.NearbyFriends(ctx, bob, rafflesPl, DefaultNearbyRadiusMeters)
	require.NoError(t, err)
	assert.NotNil(t, nearby)
	assert.Empty(t, nearby, "bob has no outgoing edges")

	_, err = stack.users.NearbyFriends(ctx, alice, models.GeoPoint{Latitude: 0, Longitude: 200}, 100)
	assert.ErrorIs(t, err, apierrors.ErrInvalidCoordinates)
}

func TestUserService_ProfileCoordinatesAreIndexed(t *testing.T) {
	ctx := context.Background()
	stack := newTestStack(t)
	alice := stack.register(t, "Alice", "alice@example.com")

	lat, lon := rafflesPl.Latitude, rafflesPl.Longitude
	res, err := stack.auth.Register(ctx, RegisterInput{
		Name:      "Bob",
		Email:     "bob@example.com",
		Password:  "password123",
		Latitude:  &lat,
		Longitude: &lon,
	})
	require.NoError(t, err)
	bob := res.User
	carol := stack.register(t, "Carol", "carol@example.com")
	stack.befriend(t, alice, bob)
	stack.befriend(t, alice, carol)

	nearby, err := stack.users.NearbyFriends(ctx, alice, rafflesPl, DefaultNearbyRadiusMeters)
	require.NoError(t, err)
	require.Len(t, nearby, 1, "coordinates given at registration are searchable")
	assert.Equal(t, bob.ID, nearby[0].UserID)

	// Setting only one coordinate leaves the index alone
	_, err = stack.users.UpdateProfile(ctx, carol, models.ProfileUpdate{Latitude: &lat})
	require.NoError(t, err)
	hits, err := stack.geo.Nearby(ctx, rafflesPl, 20000)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = stack.users.UpdateProfile(ctx, carol, models.ProfileUpdate{Longitude: &lon})
	require.NoError(t, err)
	nearby, err = stack.users.NearbyFriends(ctx, alice, rafflesPl, DefaultNearbyRadiusMeters)
	require.NoError(t, err)
	assert.Len(t, nearby, 2, "profile updates keep the index in step")

	// Moving bob away through the profile drops him from the search
	farLat, farLon := changi.Latitude, changi.Longitude
	_, err = stack.users.UpdateProfile(ctx, bob, models.ProfileUpdate{Latitude: &farLat, Longitude: &farLon})
	require.NoError(t, err)
	nearby, err = stack.users.NearbyFriends(ctx, alice, rafflesPl, DefaultNearbyRadiusMeters)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, carol.ID, nearby[0].UserID)
}
