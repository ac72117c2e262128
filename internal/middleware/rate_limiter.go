package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/LAB4170/zion-grocery-dashboard-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const limiterPurgeInterval = 5 * time.Minute

// visit tracks one client's request count within its current window.
type visit struct {
	count     int
	windowEnd time.Time
}

// limiter is a fixed-window per-IP rate limiter. Each instance owns its own
// client map and purge goroutine, so the login limiter and the general API
// limiter never share state.
type limiter struct {
	mu      sync.Mutex
	clients map[string]*visit
	limit   int
	window  time.Duration
	message string
}

func newLimiter(limit int, window time.Duration, message string) *limiter {
	l := &limiter{
		clients: make(map[string]*visit),
		limit:   limit,
		window:  window,
		message: message,
	}
	go l.purgeLoop()
	return l
}

// allow counts the request and reports whether it is within the limit,
// along with the end of the client's current window.
func (l *limiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	v, ok := l.clients[ip]
	if !ok || now.After(v.windowEnd) {
		v = &visit{windowEnd: now.Add(l.window)}
		l.clients[ip] = v
	}
	v.count++
	return v.count <= l.limit, v.windowEnd
}

func (l *limiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// purgeLoop drops clients whose window has lapsed, so the map does not
// accumulate IPs that never return.
func (l *limiter) purgeLoop() {
	ticker := time.NewTicker(limiterPurgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, v := range l.clients {
			if now.After(v.windowEnd) {
				delete(l.clients, ip)
				purged++
			}
		}
		remaining := len(l.clients)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter clients purged")
		}
	}
}

// RateLimiter limits each IP to limit requests per window.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window, "too many requests, try again shortly").handler()
}

// LoginRateLimiter limits login attempts to 20 per minute per IP,
// independent of the general API limit.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute, "too many login attempts, try again in a minute").handler()
}
