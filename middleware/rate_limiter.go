package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"safesphere/utils/errors"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu              sync.Mutex
	limit           rate.Limit
	burst           int
	clients         map[string]*clientLimiter
	idleTTL         time.Duration
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

func NewRateLimiter(perSecond float64, burst int, idleTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:           rate.Limit(perSecond),
		burst:           burst,
		clients:         make(map[string]*clientLimiter),
		idleTTL:         idleTTL,
		lastCleanup:     time.Now(),
		cleanupInterval: idleTTL,
	}
}

func (rl *RateLimiter) AllowRequest(clientID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) > rl.cleanupInterval {
		unsafeClearIdleClients(now, rl)
		rl.lastCleanup = now
	}

	c, ok := rl.clients[clientID]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if !rl.AllowRequest(clientIP(r)) {
				WriteError(w, errors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// unsafeClearIdleClients is not thread-safe; caller must hold rl.mu.
func unsafeClearIdleClients(now time.Time, rl *RateLimiter) {
	for id, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.idleTTL {
			delete(rl.clients, id)
		}
	}
}
