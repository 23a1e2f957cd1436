package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"safesphere/config"
	"safesphere/handlers"
	"safesphere/notify"
	"safesphere/services"
	"safesphere/store"
	"safesphere/utils/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// Storage
	var db store.Store = store.NewMemoryStore()
	if cfg.IsMongoEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mongoStore, err := store.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		cancel()
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoStore.Close(closeCtx); err != nil {
				log.Warn("Failed to close MongoDB", "error", err)
			}
		}()
		db = mongoStore
	} else {
		log.Warn("MONGODB_URI not set, using in-memory store")
	}

	// Redis for sessions and the geo index
	var sessions store.SessionStore = store.NewMemorySessionStore()
	var geo services.GeoIndex = services.NewMemoryGeoIndex()
	if cfg.IsRedisEnabled() {
		rdb, err := connectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		log.Info("Connected to Redis", "addr", cfg.RedisAddr)
		sessions = store.NewRedisSessionStore(rdb)
		geo = services.NewRedisGeoIndex(rdb)
	}

	friendService := services.NewFriendService(db)

	// Notification fan-out
	var notifier notify.Notifier = notify.LogNotifier{Logger: log}
	if cfg.IsNatsEnabled() {
		natsNotifier, err := notify.NewNATSNotifier(cfg.NatsURL, log)
		if err != nil {
			return err
		}
		defer natsNotifier.Close()
		log.Info("Publishing notifications to NATS", "url", cfg.NatsURL)
		notifier = notify.MultiNotifier{notifier, natsNotifier}
	}
	dispatcher := notify.NewDispatcher(friendService, notifier, cfg.NotifyWorkers, cfg.NotifyQueueSize, log)
	defer dispatcher.Close()

	router := handlers.NewRouter(handlers.Services{
		Auth:      services.NewAuthService(db, sessions, cfg.SessionSecret, cfg.SessionTTL, services.WithGeoIndex(geo)),
		Users:     services.NewUserService(db, friendService, geo),
		Friends:   friendService,
		Safety:    services.NewSafetyService(db, friendService, dispatcher),
		Locations: services.NewLocationService(db),
		Weather:   services.NewWeatherService(cfg.OpenWeatherAPIKey, nil),
	}, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateBurst:  cfg.AuthRateBurst,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// connectRedis dials and pings Redis. The client is closed when the ping fails.
func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
