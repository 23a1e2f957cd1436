package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safesphere/middleware"
	"safesphere/services"
	"safesphere/utils/errors"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Friends   *services.FriendService
	Safety    *services.SafetyService
	Locations *services.LocationService
	Weather   *services.WeatherService
}

type RouterConfig struct {
	AllowedOrigins []string
	AuthRateLimit  float64
	AuthRateBurst  int
	Logger         *slog.Logger
}

func NewRouter(svc Services, cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	friendHandler := NewFriendHandler(svc.Friends)
	safetyHandler := NewSafetyHandler(svc.Safety)
	locationHandler := NewLocationHandler(svc.Locations)
	weatherHandler := NewWeatherHandler(svc.Weather)

	requireSession := middleware.AuthMiddleware(svc.Auth)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, errors.ErrNotFound)
	})

	r.Use(middleware.ErrorMiddleware())
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusOK, "SafeSphere API is running!")
	}).Methods("GET", "OPTIONS")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "safesphere-backend"})
	}).Methods("GET", "OPTIONS")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.Use(middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, 10*time.Minute).Middleware())
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/logout", authHandler.LogoutUser).Methods("POST", "OPTIONS")

	// User routes
	userRouter := r.PathPrefix("/users").Subrouter()
	userRouter.Use(requireSession)
	userRouter.HandleFunc("/profile", userHandler.GetProfile).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PUT", "OPTIONS")
	userRouter.HandleFunc("/location", userHandler.PingLocation).Methods("POST", "OPTIONS")
	userRouter.HandleFunc("/nearby-friends", userHandler.GetNearbyFriends).Methods("GET", "OPTIONS")
	publicUserRouter := r.PathPrefix("/users").Subrouter()
	publicUserRouter.HandleFunc("/", userHandler.ListUsers).Methods("GET", "OPTIONS")
	publicUserRouter.HandleFunc("/{id:[0-9]+}", userHandler.GetUser).Methods("GET", "OPTIONS")

	// Friend routes
	friendRouter := r.PathPrefix("/friends").Subrouter()
	friendRouter.Use(requireSession)
	friendRouter.HandleFunc("/request", friendHandler.SendFriendRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/requests", friendHandler.GetFriendRequests).Methods("GET", "OPTIONS")
	friendRouter.HandleFunc("/request/{id:[0-9]+}/{action}", friendHandler.RespondToFriendRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/", friendHandler.GetFriends).Methods("GET", "OPTIONS")
	publicFriendRouter := r.PathPrefix("/friends").Subrouter()
	publicFriendRouter.HandleFunc("/{id:[0-9]+}", friendHandler.GetFriendsByID).Methods("GET", "OPTIONS")

	// Saved locations
	locationRouter := r.PathPrefix("/locations").Subrouter()
	locationRouter.Use(requireSession)
	locationRouter.HandleFunc("/", locationHandler.CreateLocation).Methods("POST", "OPTIONS")
	locationRouter.HandleFunc("/", locationHandler.GetLocations).Methods("GET", "OPTIONS")
	publicLocationRouter := r.PathPrefix("/locations").Subrouter()
	publicLocationRouter.HandleFunc("/user/{id:[0-9]+}", locationHandler.GetUserLocations).Methods("GET", "OPTIONS")

	// Emergency routes
	emergencyRouter := r.PathPrefix("/emergency").Subrouter()
	emergencyRouter.Use(requireSession)
	emergencyRouter.Handle("/safe/{id:[0-9]+}", safetyHandler.MarkSafe()).Methods("POST", "OPTIONS")
	emergencyRouter.Handle("/alert/{id:[0-9]+}", safetyHandler.SendEmergencyAlert()).Methods("POST", "OPTIONS")
	emergencyRouter.Handle("/danger/{id:[0-9]+}", safetyHandler.MarkDanger()).Methods("POST", "OPTIONS")
	emergencyRouter.HandleFunc("/alerts", safetyHandler.GetAlerts).Methods("GET", "OPTIONS")
	publicEmergencyRouter := r.PathPrefix("/emergency").Subrouter()
	publicEmergencyRouter.HandleFunc("/status/{id:[0-9]+}", safetyHandler.GetStatus).Methods("GET", "OPTIONS")

	// Weather and disaster feeds
	r.HandleFunc("/weather/{lat}/{lon}", weatherHandler.GetWeather).Methods("GET", "OPTIONS")
	r.HandleFunc("/weather/radar/{lat}/{lon}", weatherHandler.GetRadar).Methods("GET", "OPTIONS")
	r.HandleFunc("/disasters/{lat}/{lon}", weatherHandler.GetDisasters).Methods("GET", "OPTIONS")

	return r
}
