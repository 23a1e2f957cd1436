package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"safesphere/models"
)

const usersGeoKey = "users:geo"

type GeoHit struct {
	UserID         int64
	Point          models.GeoPoint
	DistanceMeters float64
}

// GeoIndex tracks the last reported position of each user.
type GeoIndex interface {
	Update(ctx context.Context, userID int64, p models.GeoPoint) error
	// Nearby returns indexed users within radiusMeters of center, closest first.
	Nearby(ctx context.Context, center models.GeoPoint, radiusMeters float64) ([]GeoHit, error)
}

// indexUserLocation indexes u's stored position once both coordinates are set
func indexUserLocation(ctx context.Context, geo GeoIndex, u models.User) error {
	if geo == nil || u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	p := models.GeoPoint{Latitude: *u.Latitude, Longitude: *u.Longitude}
	if !p.Valid() {
		return nil
	}
	return geo.Update(ctx, u.ID, p)
}

// RedisGeoIndex stores positions in a Redis geo set.
type RedisGeoIndex struct {
	client *redis.Client
}

func NewRedisGeoIndex(client *redis.Client) *RedisGeoIndex {
	return &RedisGeoIndex{client: client}
}

func (g *RedisGeoIndex) Update(ctx context.Context, userID int64, p models.GeoPoint) error {
	err := g.client.GeoAdd(ctx, usersGeoKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(userID, 10),
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	}).Err()
	if err != nil {
		return fmt.Errorf("update redis geospatial index: %w", err)
	}
	return nil
}

func (g *RedisGeoIndex) Nearby(ctx context.Context, center models.GeoPoint, radiusMeters float64) ([]GeoHit, error) {
	geoResults, err := g.client.GeoRadius(ctx, usersGeoKey, center.Longitude, center.Latitude, &redis.GeoRadiusQuery{
		Radius:    radiusMeters,
		Unit:      "m",
		WithCoord: true,
		WithDist:  true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("query redis geospatial index: %w", err)
	}

	hits := make([]GeoHit, 0, len(geoResults))
	for _, geoResult := range geoResults {
		userID, err := strconv.ParseInt(geoResult.Name, 10, 64)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed geo member", "member", geoResult.Name)
			continue
		}
		hits = append(hits, GeoHit{
			UserID:         userID,
			Point:          models.GeoPoint{Latitude: geoResult.Latitude, Longitude: geoResult.Longitude},
			DistanceMeters: geoResult.Dist,
		})
	}
	return hits, nil
}

// MemoryGeoIndex scans every indexed point with the haversine formula.
type MemoryGeoIndex struct {
	mu     sync.RWMutex
	points map[int64]models.GeoPoint
}

func NewMemoryGeoIndex() *MemoryGeoIndex {
	return &MemoryGeoIndex{points: make(map[int64]models.GeoPoint)}
}

func (g *MemoryGeoIndex) Update(_ context.Context, userID int64, p models.GeoPoint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.points[userID] = p
	return nil
}

func (g *MemoryGeoIndex) Nearby(_ context.Context, center models.GeoPoint, radiusMeters float64) ([]GeoHit, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var hits []GeoHit
	for userID, p := range g.points {
		if d := HaversineMeters(center, p); d <= radiusMeters {
			hits = append(hits, GeoHit{UserID: userID, Point: p, DistanceMeters: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].DistanceMeters < hits[j].DistanceMeters })
	return hits, nil
}

const earthRadiusMeters = 6372797.560856 // same radius Redis uses for GEO commands

func HaversineMeters(a, b models.GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
