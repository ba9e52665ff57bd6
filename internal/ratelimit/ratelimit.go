// Package ratelimit provides fixed-window request limiting behind an
// injected counter store, so the in-process backing can be swapped for the
// shared Redis store without touching call sites.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Store counts hits per key within a fixed window. Incr returns the hit
// count including the current one; the window resets once it elapses.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter rejects requests once a client exceeds limit hits per window.
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// New returns a Limiter over the given store.
func New(store Store, limit int64, window time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{store: store, limit: limit, window: window, logger: logger}
}

// Allow reports whether the keyed client is under its limit. Counter-store
// failures fail open: better to serve than to reject everyone when Redis is
// down.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	n, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		l.logger.Warn("rate limit store error", zap.String("key", key), zap.Error(err))
		return true
	}
	return n <= l.limit
}

// Middleware wraps next with per-client-IP limiting.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(r.Context(), clientIP(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the Gateway-forwarded address over the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("x-forwarded-for"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
