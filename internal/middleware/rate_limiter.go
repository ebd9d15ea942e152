package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/logging"
)

// ProxyRateLimiter throttles proxied upstream calls per client IP so one
// browser tab cannot hammer the upstream servers through the dashboard.
type ProxyRateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	lifetime time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewProxyRateLimiter creates a per-IP limiter. PROXY_RATE_LIMIT is
// requests per second (default 25), PROXY_RATE_BURST the burst size
// (default 50).
func NewProxyRateLimiter() *ProxyRateLimiter {
	limiter := &ProxyRateLimiter{
		clients:  make(map[string]*clientLimiter),
		limit:    rate.Limit(config.GetInt("PROXY_RATE_LIMIT", 25)),
		burst:    config.GetInt("PROXY_RATE_BURST", 50),
		lifetime: 10 * time.Minute,
	}

	go limiter.cleanupRoutine()

	return limiter
}

// RateLimit is a middleware enforcing the per-IP limit.
func (l *ProxyRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		if !l.limiterFor(ip).Allow() {
			logging.WarnWithComponent(logging.ComponentProxy, "Rate limit exceeded", "ip", ip)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (l *ProxyRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, ok := l.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanupRoutine drops limiters for clients idle past the lifetime.
func (l *ProxyRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-l.lifetime)
		l.mu.Lock()
		for ip, client := range l.clients {
			if client.lastSeen.Before(cutoff) {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}
