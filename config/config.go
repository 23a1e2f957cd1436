package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	LogLevel          slog.Level
	SessionSecret     string
	SessionTTL        time.Duration
	AllowedOrigins    []string
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	NatsURL           string
	OpenWeatherAPIKey string
	NotifyWorkers     int
	NotifyQueueSize   int
	AuthRateLimit     float64
	AuthRateBurst     int
}

func (c *Config) IsMongoEnabled() bool { return c.MongoURI != "" }
func (c *Config) IsRedisEnabled() bool { return c.RedisAddr != "" }
func (c *Config) IsNatsEnabled() bool { return c.NatsURL != "" }

func getEnvStrOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)

	if value == "" {
		return defaultValue
	}

	return value
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	intValue, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	floatValue, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}

	return d
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment only")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getEnvStrOrDefault("PORT", "8080"),
		LogLevel:          parseLevel(getEnvStrOrDefault("LOG_LEVEL", "info")),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionTTL:        getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),
		AllowedOrigins:    getEnvListOrDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MongoURI:          os.Getenv("MONGODB_URI"),
		MongoDatabase:     getEnvStrOrDefault("MONGODB_DATABASE", "safesphere"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvIntOrDefault("REDIS_DB", 0),
		NatsURL:           os.Getenv("NATS_URL"),
		OpenWeatherAPIKey: getEnvStrOrDefault("OPENWEATHER_API_KEY", "demo_key"),
		NotifyWorkers:     getEnvIntOrDefault("NOTIFY_WORKERS", 4),
		NotifyQueueSize:   getEnvIntOrDefault("NOTIFY_QUEUE_SIZE", 256),
		AuthRateLimit:     getEnvFloatOrDefault("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:     getEnvIntOrDefault("AUTH_RATE_BURST", 10),
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET environment variable is not set")
	}
	if cfg.NotifyWorkers < 1 {
		cfg.NotifyWorkers = 1
	}
	if cfg.NotifyQueueSize < 1 {
		cfg.NotifyQueueSize = 1
	}
	return cfg, nil
}
