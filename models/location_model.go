package models

import "time"

type Location struct {
	ID        int64     `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	Type      string    `json:"type" bson:"type"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

type WeatherReading struct {
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Pressure      float64   `json:"pressure"`
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection float64   `json:"wind_direction"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
}

type DisasterEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Magnitude   *float64  `json:"magnitude,omitempty"`
	Radius      float64   `json:"radius"`
	Timestamp   time.Time `json:"timestamp"`
	Severity    string    `json:"severity"`
}

type RadarTile struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	RadarURL  string    `json:"radar_url"`
	Timestamp time.Time `json:"timestamp"`
}
