package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	window          = time.Minute
	visitorLifetime = 3 * time.Minute
)

type RateLimiter struct {
	store middleware.RateLimiterStore
}

// NewRateLimiter limits each client to perMinute decode requests. Counters
// live in redis when a client is given, otherwise in process memory.
func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	if redisClient != nil {
		return &RateLimiter{store: &redisStore{redis: redisClient, limit: int64(perMinute)}}
	}
	return &RateLimiter{store: newMemoryStore(perMinute, visitorLifetime)}
}

// Rate limiting middleware for decode operations
func (r *RateLimiter) DecodeRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "Unable to identify client.",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// redisStore is a fixed one-minute window counter per identifier.
type redisStore struct {
	redis *redis.Client
	limit int64
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := fmt.Sprintf("ratelimit:decode:%s", strings.ToLower(identifier))

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		// let the request through when redis is unavailable
		return true, nil
	}
	if count == 1 {
		s.redis.Expire(ctx, key, window)
	}
	return count <= s.limit, nil
}

// newMemoryStore keeps a token bucket per identifier. Visitors not seen for
// expiresIn are evicted.
func newMemoryStore(perMinute int, expiresIn time.Duration) *middleware.RateLimiterMemoryStore {
	if perMinute <= 0 {
		perMinute = 1
	}
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      float64(rate.Every(window / time.Duration(perMinute))),
		Burst:     perMinute,
		ExpiresIn: expiresIn,
	})
}
