// Package middleware provides the HTTP middleware stack.
package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/mkamalov/bazar/pkg/cache"
)

// RateLimit limits each client IP to max requests per window using a
// fixed-window counter in Redis, so the limit holds across replicas.
// Example: middleware.RateLimit(300, time.Minute)
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			key := "bazar:rate:" + ip

			rdb := cache.Client()
			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				// Redis down: fail open rather than blocking all traffic.
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}

			if count > int64(max) {
				w.Header().Set("Retry-After", window.String())
				http.Error(w, `{"status":429,"message":"Too Many Requests"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return fwd
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
