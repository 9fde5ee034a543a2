package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	orderRatePrefix = "order_rate:"
	orderRateLimit  = 5
	orderRateWindow = 10 * time.Minute
)

type counterStore interface {
	IncrementCounter(ctx context.Context, key string, ttl time.Duration, now time.Time) (int64, error)
}

// rateLimiter caps the hits per key inside a window that restarts once the
// key has been idle for the whole window.
type rateLimiter struct {
	store  counterStore
	prefix string
	limit  int64
	window time.Duration
}

func newRateLimiter(store counterStore, prefix string, limit int64, window time.Duration) *rateLimiter {
	return &rateLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *rateLimiter) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	hits, err := l.store.IncrementCounter(ctx, l.prefix+key, l.window, now)
	if err != nil {
		return false, err
	}
	return hits <= l.limit, nil
}

// clientIP returns the first X-Forwarded-For entry, falling back to the
// address of the connection.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
