package services

import (
	"context"
	"time"

	"safesphere/models"
	"safesphere/store"
	apierrors "safesphere/utils/errors"
)

type LocationService struct {
	store store.LocationStore
	now   func() time.Time
}

type LocationInput struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	Type      *string
}

func NewLocationService(s store.LocationStore) *LocationService {
	return &LocationService{store: s, now: time.Now}
}

// CreateLocation saves a named place for user; omitted fields take defaults
func (s *LocationService) CreateLocation(ctx context.Context, user models.User, in LocationInput) (models.Location, error) {
	loc := models.Location{
		UserID:    user.ID,
		Name:      "Unknown",
		Type:      "other",
		CreatedAt: s.now().UTC(),
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Type != nil {
		loc.Type = *in.Type
	}
	if in.Latitude != nil {
		loc.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		loc.Longitude = *in.Longitude
	}
	if !(models.GeoPoint{Latitude: loc.Latitude, Longitude: loc.Longitude}).Valid() {
		return models.Location{}, apierrors.ErrInvalidCoordinates
	}

	created, err := s.store.CreateLocation(ctx, loc)
	if err != nil {
		return models.Location{}, apierrors.Internal(err, "failed to save location")
	}
	return created, nil
}

func (s *LocationService) ListLocations(ctx context.Context, userID int64) ([]models.Location, error) {
	locs, err := s.store.ListLocations(ctx, userID)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list locations")
	}
	return locs, nil
}
