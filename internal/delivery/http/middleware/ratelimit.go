package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	h "eventflow/internal/delivery/http/helpers"
)

// RateLimiter limits requests per client IP using a token bucket per client.
// Idle client entries are dropped after the cleanup interval.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	lifetime time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing maxRequests per window for each client IP.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		lifetime: 3 * window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *RateLimiter) cleanup() {
	for range time.Tick(rl.lifetime) {
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if time.Since(c.lastSeen) > rl.lifetime {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Wrap limits the handler per client IP, responding 429 when the budget is spent.
func (rl *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.allow(ip) {
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeBadRequest, "too many requests, try again later")
			return
		}
		next(w, r)
	}
}
