package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHTTPClient struct {
	resp *http.Response
	err  error
	req  *http.Request
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.req = req
	return c.resp, c.err
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestWeatherService_GetWeather(t *testing.T) {
	ctx := context.Background()

	t.Run("no api key serves mock data", func(t *testing.T) {
		client := &stubHTTPClient{}
		svc := NewWeatherService("demo_key", client)
		svc.now = fixedClock

		reading := svc.GetWeather(ctx, 1.3, 103.8)
		assert.Equal(t, "Mock Data (No API Key)", reading.Source)
		assert.Equal(t, 22.5, reading.Temperature)
		assert.Equal(t, "Partly cloudy", reading.Description)
		assert.Equal(t, fixedClock(), reading.Timestamp)
		assert.Nil(t, client.req, "upstream must not be called")
	})

	t.Run("upstream success", func(t *testing.T) {
		client := &stubHTTPClient{resp: jsonResponse(http.StatusOK, `{
			"main": {"temp": 30.1, "humidity": 80, "pressure": 1008},
			"wind": {"speed": 3.4, "deg": 90},
			"weather": [{"description": "light rain", "icon": "10d"}]
		}`)}
		svc := NewWeatherService("real-key", client)
		svc.now = fixedClock

		reading := svc.GetWeather(ctx, 1.3, 103.8)
		assert.Equal(t, "OpenWeatherMap", reading.Source)
		assert.Equal(t, 30.1, reading.Temperature)
		assert.Equal(t, "light rain", reading.Description)
		assert.Equal(t, "10d", reading.Icon)

		require.NotNil(t, client.req)
		q := client.req.URL.Query()
		assert.Equal(t, "1.3", q.Get("lat"))
		assert.Equal(t, "103.8", q.Get("lon"))
		assert.Equal(t, "real-key", q.Get("appid"))
		assert.Equal(t, "metric", q.Get("units"))
	})

	t.Run("transport error falls back", func(t *testing.T) {
		svc := NewWeatherService("real-key", &stubHTTPClient{err: errors.New("dial tcp: timeout")})

		reading := svc.GetWeather(ctx, 1.3, 103.8)
		assert.True(t, strings.HasPrefix(reading.Source, "Mock Data (API Error: "))
		assert.Contains(t, reading.Source, "dial tcp: timeout")
		assert.Equal(t, 1.3, reading.Latitude)
	})

	t.Run("non-200 falls back", func(t *testing.T) {
		svc := NewWeatherService("real-key", &stubHTTPClient{resp: jsonResponse(http.StatusUnauthorized, `{}`)})

		reading := svc.GetWeather(ctx, 1.3, 103.8)
		assert.Contains(t, reading.Source, "status 401")
	})
}

func TestWeatherService_GetDisasters(t *testing.T) {
	svc := NewWeatherService("demo_key", nil)

	events := svc.GetDisasters(1.3, 103.8, 0)
	require.Len(t, events, 2)
	assert.Equal(t, "earthquake", events[0].Type)
	require.NotNil(t, events[0].Magnitude)
	assert.Equal(t, 3.2, *events[0].Magnitude)
	assert.Equal(t, DefaultDisasterRadius, events[0].Radius)
	assert.InDelta(t, 1.31, events[0].Latitude, 1e-9)
	assert.Nil(t, events[1].Magnitude)

	events = svc.GetDisasters(1.3, 103.8, 25)
	assert.Equal(t, 25.0, events[1].Radius)
}

func TestWeatherService_GetRadar(t *testing.T) {
	svc := NewWeatherService("demo_key", nil)

	tile := svc.GetRadar(1.3, 103.8)
	assert.True(t, strings.HasSuffix(tile.RadarURL, "appid=demo_key"))
	assert.Equal(t, 1.3, tile.Latitude)
}
