package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bigode/bigode-booking/internal/http/response"
	"github.com/bigode/bigode-booking/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int                            // Max requests per window
	Window   time.Duration                  // Time window duration
	Prefix   string                         // Redis key namespace
	KeyFunc  func(r *http.Request) []string // Function to generate rate limit keys
	SkipFunc func(r *http.Request) bool     // Function to skip rate limiting
}

// RateLimiter counts requests per key in fixed redis windows.
type RateLimiter struct {
	rdb    *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, config RateLimitConfig) *RateLimiter {
	if config.Prefix == "" {
		config.Prefix = "ratelimit"
	}
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIPKeyFunc
	}
	return &RateLimiter{
		rdb:    rdb,
		config: config,
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.config.SkipFunc != nil && rl.config.SkipFunc(r) {
				next.ServeHTTP(w, r)
				return
			}

			for _, key := range rl.config.KeyFunc(r) {
				allowed, retryAfter := rl.Allow(r.Context(), key)
				if !allowed {
					w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
					response.RateLimit(w, "Muitas tentativas. Tente novamente mais tarde.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Allow increments the counter for key and reports whether it is still
// within the limit. Redis failures fail open.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	hasher := sha256.New()
	hasher.Write([]byte(key))
	redisKey := fmt.Sprintf("%s:%x", rl.config.Prefix, hasher.Sum(nil))

	count, err := rl.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.WarnContext(ctx, "rate limit check failed", "error", err)
		return true, 0
	}
	if count == 1 {
		rl.rdb.Expire(ctx, redisKey, rl.config.Window)
	}

	if count <= int64(rl.config.Requests) {
		return true, 0
	}

	ttl, err := rl.rdb.TTL(ctx, redisKey).Result()
	if err != nil || ttl < 0 {
		ttl = rl.config.Window
	}
	return false, ttl
}

// ClientIPKeyFunc rate limits by client IP.
func ClientIPKeyFunc(r *http.Request) []string {
	if ip := getClientIP(r); ip != "" {
		return []string{"ip:" + ip}
	}
	return nil
}

// getClientIP extracts the real client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
