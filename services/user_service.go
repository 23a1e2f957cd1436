package services

import (
	"context"
	"errors"
	"log/slog"

	"safesphere/models"
	"safesphere/store"
	apierrors "safesphere/utils/errors"
)

const DefaultNearbyRadiusMeters = 3000

type UserService struct {
	store   store.Store
	friends *FriendService
	geo     GeoIndex
}

type NearbyFriend struct {
	Name     string  `json:"name"`
	UserID   int64   `json:"user_id"`
	Distance float64 `json:"distance"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func NewUserService(s store.Store, friends *FriendService, geo GeoIndex) *UserService {
	return &UserService{store: s, friends: friends, geo: geo}
}

// GetUser retrieves a public profile
func (s *UserService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apierrors.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, apierrors.Internal(err, "failed to load user")
	}
	return user, nil
}

// ListUsers returns the public user directory
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to list users")
	}
	return users, nil
}

// UpdateProfile replaces only the fields present in upd and keeps the geo
// index in step with the stored coordinates
func (s *UserService) UpdateProfile(ctx context.Context, user models.User, upd models.ProfileUpdate) (models.User, error) {
	updated, err := s.store.UpdateProfile(ctx, user.ID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apierrors.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, apierrors.Internal(err, "failed to update profile")
	}
	if err := indexUserLocation(ctx, s.geo, updated); err != nil {
		return models.User{}, apierrors.Internal(err, "failed to index location")
	}
	return updated, nil
}

// PingLocation records the user's current position on the profile and in the geo index
func (s *UserService) PingLocation(ctx context.Context, user models.User, p models.GeoPoint) (models.User, error) {
	if !p.Valid() {
		return models.User{}, apierrors.ErrInvalidCoordinates
	}

	lat, lon := p.Latitude, p.Longitude
	updated, err := s.UpdateProfile(ctx, user, models.ProfileUpdate{Latitude: &lat, Longitude: &lon})
	if err != nil {
		return models.User{}, err
	}

	slog.DebugContext(ctx, "Updated location", "user_id", user.ID, "lat", lat, "lon", lon)
	return updated, nil
}

// NearbyFriends lists user's friends last seen within radiusMeters of center
func (s *UserService) NearbyFriends(ctx context.Context, user models.User, center models.GeoPoint, radiusMeters float64) ([]NearbyFriend, error) {
	if !center.Valid() {
		return nil, apierrors.ErrInvalidCoordinates
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultNearbyRadiusMeters
	}

	friends, err := s.friends.ListFriends(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.User, len(friends))
	for _, f := range friends {
		byID[f.ID] = f
	}

	hits, err := s.geo.Nearby(ctx, center, radiusMeters)
	if err != nil {
		return nil, apierrors.Internal(err, "failed to query nearby users")
	}

	nearby := []NearbyFriend{}
	for _, hit := range hits {
		friend, ok := byID[hit.UserID]
		if !ok || hit.UserID == user.ID {
			continue
		}
		nearby = append(nearby, NearbyFriend{
			Name:     friend.Name,
			UserID:   friend.ID,
			Distance: hit.DistanceMeters,
			Lat:      hit.Point.Latitude,
			Lon:      hit.Point.Longitude,
		})
	}
	return nearby, nil
}
