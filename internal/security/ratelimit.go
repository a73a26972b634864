package security

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per client in each window
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	used  int
}

// NewRateLimiter creates a limiter allowing limit requests per period for each client
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
	go rl.sweep()
	return rl
}

// Allow records a request from client and reports whether it is within the limit
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.clients[client]
	if w == nil || now.Sub(w.start) >= rl.period {
		w = &window{start: now}
		rl.clients[client] = w
	}
	if w.used >= rl.limit {
		return false
	}
	w.used++
	return true
}

// RetryAfter returns how long client must wait before its window resets
func (rl *RateLimiter) RetryAfter(client string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.clients[client]
	if w == nil {
		return 0
	}
	remaining := rl.period - rl.now().Sub(w.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// sweep drops windows that ended long ago
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period * 10)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := rl.now()
		for client, w := range rl.clients {
			if now.Sub(w.start) > rl.period*2 {
				delete(rl.clients, client)
			}
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP, preferring the first proxy-forwarded address
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
