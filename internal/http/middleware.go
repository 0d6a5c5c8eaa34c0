package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityHeadersMiddleware adds security headers to all responses.
// Every route serves JSON, so nothing may be embedded or loaded.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

const limiterIdleTTL = 10 * time.Minute

// TriggerLimiter throttles sync triggers per client IP, so a busy client
// cannot burn through the upstream's rate limit on everyone's behalf.
type TriggerLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	clients map[string]*clientLimiter
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewTriggerLimiter allows perMinute triggers per client with the given burst.
func NewTriggerLimiter(perMinute, burst int) *TriggerLimiter {
	if burst < 1 {
		burst = 1
	}
	return &TriggerLimiter{
		every:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// reserve returns zero when the client may proceed now, or how long to wait
func (tl *TriggerLimiter) reserve(client string) time.Duration {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	now := tl.now()
	tl.prune(now)

	cl, ok := tl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(tl.every, tl.burst)}
		tl.clients[client] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Minute
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

func (tl *TriggerLimiter) prune(now time.Time) {
	for key, cl := range tl.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(tl.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
func (tl *TriggerLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if wait := tl.reserve(c.ClientIP()); wait > 0 {
			seconds := int(wait.Seconds() + 0.999)
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "too many sync requests",
				Code:  "rate_limited",
			})
			return
		}
		c.Next()
	}
}
