package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"safesphere/models"
)

const (
	openWeatherURL = "https://api.openweathermap.org/data/2.5/weather"
	radarTileURL   = "https://tile.openweathermap.org/map/precipitation_new/10/512/512.png?appid="
	demoAPIKey     = "demo_key"
	weatherTimeout = 10 * time.Second
)

const DefaultDisasterRadius = 100.0

// HTTPClient allows injecting mock HTTP clients for testing
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type WeatherService struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	now     func() time.Time
}

func NewWeatherService(apiKey string, client HTTPClient) *WeatherService {
	if client == nil {
		client = &http.Client{Timeout: weatherTimeout}
	}
	return &WeatherService{apiKey: apiKey, baseURL: openWeatherURL, client: client, now: time.Now}
}

type openWeatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (s *WeatherService) hasAPIKey() bool {
	return s.apiKey != "" && s.apiKey != demoAPIKey
}

// GetWeather asks OpenWeatherMap for current conditions and falls back to a
// mock reading when no key is configured or the upstream call fails.
func (s *WeatherService) GetWeather(ctx context.Context, lat, lon float64) models.WeatherReading {
	if !s.hasAPIKey() {
		return s.mockReading(lat, lon, "Mock Data (No API Key)")
	}

	reading, err := s.fetch(ctx, lat, lon)
	if err != nil {
		slog.WarnContext(ctx, "Weather lookup failed, serving mock data", "error", err)
		return s.mockReading(lat, lon, fmt.Sprintf("Mock Data (API Error: %s)", err))
	}
	return reading
}

func (s *WeatherService) fetch(ctx context.Context, lat, lon float64) (models.WeatherReading, error) {
	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.WeatherReading{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.WeatherReading{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.WeatherReading{}, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return models.WeatherReading{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(data.Weather) == 0 {
		return models.WeatherReading{}, errors.New("weather response has no conditions")
	}

	return models.WeatherReading{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   data.Main.Temp,
		Humidity:      data.Main.Humidity,
		Pressure:      data.Main.Pressure,
		WindSpeed:     data.Wind.Speed,
		WindDirection: data.Wind.Deg,
		Description:   data.Weather[0].Description,
		Icon:          data.Weather[0].Icon,
		Timestamp:     s.now().UTC(),
		Source:        "OpenWeatherMap",
	}, nil
}

func (s *WeatherService) mockReading(lat, lon float64, source string) models.WeatherReading {
	return models.WeatherReading{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   22.5,
		Humidity:      65.0,
		Pressure:      1013.25,
		WindSpeed:     5.2,
		WindDirection: 180.0,
		Description:   "Partly cloudy",
		Icon:          "02d",
		Timestamp:     s.now().UTC(),
		Source:        source,
	}
}

// GetDisasters returns sample events around the point; radius is echoed back
func (s *WeatherService) GetDisasters(lat, lon, radius float64) []models.DisasterEvent {
	if radius <= 0 {
		radius = DefaultDisasterRadius
	}
	now := s.now().UTC()
	magnitude := 3.2
	return []models.DisasterEvent{
		{
			ID:          "mock_earthquake_1",
			Type:        "earthquake",
			Title:       "Minor Earthquake",
			Description: "Minor seismic activity detected",
			Latitude:    lat + 0.01,
			Longitude:   lon + 0.01,
			Magnitude:   &magnitude,
			Radius:      radius,
			Timestamp:   now,
			Severity:    "low",
		},
		{
			ID:          "mock_flood_1",
			Type:        "flood",
			Title:       "Flood Warning",
			Description: "Heavy rainfall causing flooding",
			Latitude:    lat - 0.01,
			Longitude:   lon - 0.01,
			Radius:      radius,
			Timestamp:   now,
			Severity:    "medium",
		},
	}
}

func (s *WeatherService) GetRadar(lat, lon float64) models.RadarTile {
	return models.RadarTile{
		Latitude:  lat,
		Longitude: lon,
		RadarURL:  radarTileURL + url.QueryEscape(s.apiKey),
		Timestamp: s.now().UTC(),
	}
}
