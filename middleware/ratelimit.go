package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 10 * time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (l *ipLimiter) touch(now time.Time) {
	l.mu.Lock()
	l.lastSeen = now
	l.mu.Unlock()
}

func (l *ipLimiter) idleSince(cutoff time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastSeen.Before(cutoff)
}

// sweepIdle drops limiters not seen since cutoff.
func sweepIdle(limiters *sync.Map, cutoff time.Time) {
	limiters.Range(func(k, v interface{}) bool {
		if v.(*ipLimiter).idleSince(cutoff) {
			limiters.Delete(k)
		}
		return true
	})
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size. Rejected requests get 429 with a
// Retry-After hint in seconds.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	limiters := &sync.Map{}

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for now := range ticker.C {
			sweepIdle(limiters, now.Add(-limiterIdleAfter))
		}
	}()

	return func(c *gin.Context) {
		now := time.Now()
		v, _ := limiters.LoadOrStore(c.ClientIP(), &ipLimiter{limiter: rate.NewLimiter(r, b)})
		il := v.(*ipLimiter)
		il.touch(now)

		res := il.limiter.ReserveN(now, 1)
		if !res.OK() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
