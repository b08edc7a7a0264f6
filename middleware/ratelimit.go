package middleware

import (
	"sync"
	"time"

	"study-abroad-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key (client IP).
type KeyedLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter allows burst requests at once and refills one token every
// interval.
func NewKeyedLimiter(interval time.Duration, burst int) *KeyedLimiter {
	return &KeyedLimiter{
		limit:    rate.Every(interval),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (k *KeyedLimiter) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	for ip, v := range k.visitors {
		if now.Sub(v.lastSeen) > k.idleTTL {
			delete(k.visitors, ip)
		}
	}

	v, ok := k.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// LoginRateLimiter throttles credential attempts per client IP.
func LoginRateLimiter(l *KeyedLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.Allow(c.IP()) {
			return c.Next()
		}
		config.Logger.Warn("Login rate limit exceeded", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"message": "Too many login attempts. Please try again later.",
			"error":   "rate limit exceeded",
		})
	}
}

// GlobalRateLimiter caps every client at 120 requests per minute.
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many requests. Please try again later.",
				"error":   "rate limit exceeded",
			})
		},
	})
}
