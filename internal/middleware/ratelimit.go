package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter provides per-client rate limiting keyed by IP address.
type RateLimiter struct {
	visitors     map[string]*rate.Limiter
	mu           sync.RWMutex
	r            rate.Limit    // requests per second
	b            int           // burst size
	cleanupAfter time.Duration // idle window before a visitor entry is dropped
}

// NewRateLimiter creates a new rate limiter.
// Example: NewRateLimiter(10, 20, 3*time.Minute) = 10 req/sec with burst
// of 20, forgetting a client three minutes after its first request.
func NewRateLimiter(rps rate.Limit, burst int, cleanupAfter time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors:     make(map[string]*rate.Limiter),
		r:            rps,
		b:            burst,
		cleanupAfter: cleanupAfter,
	}
}

// getVisitor returns the rate limiter for the given IP
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.visitors[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.visitors[ip] = limiter

		// Cleanup old visitors periodically
		go func() {
			time.Sleep(rl.cleanupAfter)
			rl.mu.Lock()
			delete(rl.visitors, ip)
			rl.mu.Unlock()
		}()
	}

	return limiter
}

// clientIP extracts the rate key for a request. Only the first hop of
// X-Forwarded-For is used; the rest of the chain is appended by
// intermediaries and would otherwise let a client mint fresh keys per
// request. The port is stripped from RemoteAddr so one client's
// connections share a bucket.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Limit is a middleware that rate limits requests by client IP
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		limiter := rl.getVisitor(ip)
		if !limiter.Allow() {
			log.Printf("[RateLimit] Rejected %s %s from %s", r.Method, r.URL.Path, ip)
			http.Error(w, "Rate limit exceeded. Try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
