package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	loginRateKeyPrefix = "rl:login:"
	loginRateWindow    = time.Minute
)

// LoginRateLimit limits login attempts per email, or client IP when the body
// carries none. Redis gives a shared fixed window across instances; without
// Redis an in-process token bucket applies the same budget.
func LoginRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	var local *keyedLimiter
	if cache == nil {
		local = newKeyedLimiter(maxPerMin, loginRateWindow)
	}

	return func(c *fiber.Ctx) error {
		key := loginRateKey(c)

		if local != nil {
			if !local.allow(key) {
				return tooManyAttempts(c)
			}
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 500*time.Millisecond)
		defer cancel()

		cacheKey := loginRateKeyPrefix + key
		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, cacheKey)
			ttl = pipe.TTL(ctx, cacheKey)
			return nil
		})
		if err != nil {
			// fail open: an unavailable cache must not lock everyone out
			if logger != nil {
				logger.Warn("login rate limit unavailable", slog.Any("error", err))
			}
			return c.Next()
		}
		cnt := incr.Val()
		// a counter without expiry would lock the key out for good
		if ttl.Val() < 0 {
			if err := cache.Expire(ctx, cacheKey, loginRateWindow).Err(); err != nil {
				if logger != nil {
					logger.Warn("login rate window not set, dropping counter", slog.String("key", key), slog.Any("error", err))
				}
				cache.Del(ctx, cacheKey)
			}
		}
		if cnt > int64(maxPerMin) {
			return tooManyAttempts(c)
		}
		return c.Next()
	}
}

func loginRateKey(c *fiber.Ctx) string {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&req)
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return "email:" + email
	}
	return "ip:" + c.IP()
}

func tooManyAttempts(c *fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(loginRateWindow.Seconds())))
	return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
}

// keyedLimiter holds one token bucket per key.
type keyedLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	limit       rate.Limit
	burst       int
	lastCleanup time.Time
}

func newKeyedLimiter(perWindow int, window time.Duration) *keyedLimiter {
	return &keyedLimiter{
		limiters:    make(map[string]*rate.Limiter),
		limit:       rate.Limit(float64(perWindow) / window.Seconds()),
		burst:       perWindow,
		lastCleanup: time.Now(),
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if time.Since(k.lastCleanup) > 5*time.Minute {
		// a full bucket means the key has been idle
		for name, l := range k.limiters {
			if l.Tokens() >= float64(k.burst) {
				delete(k.limiters, name)
			}
		}
		k.lastCleanup = time.Now()
	}

	l, ok := k.limiters[key]
	if !ok {
		l = rate.NewLimiter(k.limit, k.burst)
		k.limiters[key] = l
	}
	return l.Allow()
}
