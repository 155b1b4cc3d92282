package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// KeyedLimiter hands out one token bucket per key and forgets keys idle longer than ttl.
type KeyedLimiter struct {
	mu     sync.Mutex
	m      map[string]*visitor
	rps    rate.Limit
	burst  int
	ttl    time.Duration
	lastGC time.Time
}

func NewKeyedLimiter(rps float64, burst int, ttl time.Duration) *KeyedLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &KeyedLimiter{m: make(map[string]*visitor), rps: rate.Limit(rps), burst: burst, ttl: ttl, lastGC: time.Now()}
}

// Allow consumes one token for key.
func (k *KeyedLimiter) Allow(key string) bool {
	now := time.Now()
	k.mu.Lock()
	v, ok := k.m[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(k.rps, k.burst)}
		k.m[key] = v
	}
	v.seen = now
	if now.Sub(k.lastGC) > k.ttl {
		for key, vis := range k.m {
			if now.Sub(vis.seen) > k.ttl {
				delete(k.m, key)
			}
		}
		k.lastGC = now
	}
	k.mu.Unlock()
	return v.lim.AllowN(now, 1)
}

// RateLimit rejects requests over the per-client budget with 429.
func RateLimit(k *KeyedLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !k.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(c)
		}
	}
}
