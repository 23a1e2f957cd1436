package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by route template, method and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safesphere_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safesphere_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"route", "method"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safesphere_status_transitions_total",
		Help: "Safety status transitions by new status",
	}, []string{"status"})

	FriendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safesphere_friend_requests_total",
		Help: "Friend request events by action",
	}, []string{"action"})

	// Notifications counts fan-out deliveries by result (delivered, failed, dropped)
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safesphere_notifications_total",
		Help: "Notification deliveries by result",
	}, []string{"result"})
)
