package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vooagent/voo/internal/models"
)

// RateLimiter is a per-client sliding window. Idle clients are pruned on
// access, so no background goroutine is needed.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	clients   map[string][]time.Time
	lastPrune time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string][]time.Time),
	}
}

// Allow records a request for key and reports how many remain in the window.
func (rl *RateLimiter) Allow(key string) (remaining int, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.lastPrune) > rl.window {
		rl.prune(cutoff)
		rl.lastPrune = now
	}

	hits := rl.clients[key]
	valid := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= rl.limit {
		rl.clients[key] = valid
		return 0, false
	}
	valid = append(valid, now)
	rl.clients[key] = valid
	return rl.limit - len(valid), true
}

func (rl *RateLimiter) prune(cutoff time.Time) {
	for key, hits := range rl.clients {
		if len(hits) == 0 || hits[len(hits)-1].Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits each client address to limitPerMinute requests.
func RateLimit(limitPerMinute int) func(http.Handler) http.Handler {
	rl := NewRateLimiter(limitPerMinute, time.Minute)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}

			remaining, ok := rl.Allow(key)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				w.Header().Set("Retry-After", "60")
				models.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
