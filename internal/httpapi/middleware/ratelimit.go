package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket is one caller's token bucket: capacity = burst, refilled at
// rate tokens per second.
type bucket struct {
	tokens float64
	last   time.Time
}

type ipLimiter struct {
	rate  float64
	burst float64
	mu    sync.Mutex
	seen  map[string]*bucket
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{rate: rps, burst: float64(burst), seen: make(map[string]*bucket)}
}

func (l *ipLimiter) allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.seen[key]
	if b == nil {
		b = &bucket{tokens: l.burst, last: now}
		l.seen[key] = b
	}
	b.tokens += now.Sub(b.last).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// RateLimit limits by remote IP. RateLimit(120, 60) means 120 req/min
// with burst 60; reqPerMin <= 0 disables the middleware.
func RateLimit(reqPerMin, burst int) func(http.Handler) http.Handler {
	if reqPerMin <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newIPLimiter(float64(reqPerMin)/60.0, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				deny(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// honor X-Forwarded-For if behind a proxy
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
