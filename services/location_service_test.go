package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safesphere/models"
	"safesphere/store"
	apierrors "safesphere/utils/errors"
)

func TestLocationService_CreateLocation(t *testing.T) {
	ctx := context.Background()
	svc := NewLocationService(store.NewMemoryStore())
	alice := models.User{ID: 1}

	t.Run("omitted fields take defaults", func(t *testing.T) {
		loc, err := svc.CreateLocation(ctx, alice, LocationInput{})
		require.NoError(t, err)
		assert.Equal(t, "Unknown", loc.Name)
		assert.Equal(t, "other", loc.Type)
		assert.Equal(t, alice.ID, loc.UserID)
		assert.NotZero(t, loc.ID)
	})

	t.Run("explicit fields are kept", func(t *testing.T) {
		name, kind := "Home", "home"
		lat, lon := 1.3, 103.8
		loc, err := svc.CreateLocation(ctx, alice, LocationInput{Name: &name, Type: &kind, Latitude: &lat, Longitude: &lon})
		require.NoError(t, err)
		assert.Equal(t, "Home", loc.Name)
		assert.Equal(t, "home", loc.Type)
		assert.Equal(t, lat, loc.Latitude)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		lat := -95.0
		_, err := svc.CreateLocation(ctx, alice, LocationInput{Latitude: &lat})
		assert.ErrorIs(t, err, apierrors.ErrInvalidCoordinates)
	})

	locs, err := svc.ListLocations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, locs, 2)

	locs, err = svc.ListLocations(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, locs)
}
