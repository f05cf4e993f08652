package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/metrics"
	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/store"
)

const (
	sendLimit  = 30 // messages per sender per window
	sendWindow = time.Minute
)

// RateLimiter throttles message sends per authenticated sender. It
// needs Redis for its counters; without Redis it is a pass-through.
type RateLimiter struct {
	redis *store.RedisStore
	log   zerolog.Logger
}

// NewRateLimiter creates a rate limiter. redis may be nil.
func NewRateLimiter(redis *store.RedisStore, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{redis: redis, log: log}
}

// LimitSends applies the per-sender send budget. Redis errors fail
// open: a broken limiter must not take messaging down with it.
func (l *RateLimiter) LimitSends(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims := GetIdentityFromContext(r.Context())
		if claims == nil {
			next.ServeHTTP(w, r)
			return
		}

		ok, err := l.redis.CheckRateLimit(r.Context(), claims.Email, sendLimit)
		if err != nil {
			l.log.Warn().Err(err).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			metrics.RateLimitHits.Inc()
			w.Header().Set("Retry-After", "60")
			jsonError(w, http.StatusTooManyRequests, "too many messages, slow down")
			return
		}

		if err := l.redis.IncrementRateLimit(r.Context(), claims.Email, sendWindow); err != nil {
			l.log.Warn().Err(err).Msg("rate limit increment failed")
		}

		next.ServeHTTP(w, r)
	})
}
