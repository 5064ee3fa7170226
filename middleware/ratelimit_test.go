package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newRateLimitRouter(r rate.Limit, b int) *gin.Engine {
	eng := gin.New()
	eng.Use(RateLimit(r, b))
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hit(eng *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	w := httptest.NewRecorder()
	eng.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	eng := newRateLimitRouter(0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(eng, "10.0.1.1").Code, "request %d", i+1)
	}

	w := hit(eng, "10.0.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimit_RetryAfterSeconds(t *testing.T) {
	eng := newRateLimitRouter(0.5, 1)
	require.Equal(t, http.StatusOK, hit(eng, "10.0.2.1").Code)

	w := hit(eng, "10.0.2.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	secs, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 1)
	assert.LessOrEqual(t, secs, 3)
}

func TestRateLimit_RejectedRequestsKeepBucket(t *testing.T) {
	const perSecond = 10
	eng := newRateLimitRouter(perSecond, 1)
	require.Equal(t, http.StatusOK, hit(eng, "10.0.3.1").Code)

	// Rejections must not push the bucket into debt.
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusTooManyRequests, hit(eng, "10.0.3.1").Code)
	}

	time.Sleep(time.Second/perSecond + 20*time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(eng, "10.0.3.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(eng, "10.0.3.1").Code)
}

func TestRateLimit_PerIP(t *testing.T) {
	eng := newRateLimitRouter(0.001, 1)
	for _, ip := range []string{"10.1.1.1", "10.1.1.2"} {
		assert.Equal(t, http.StatusOK, hit(eng, ip).Code, ip)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(eng, "10.1.1.1").Code)
}

func TestIPLimiter_IdleSince(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-limiterIdleAfter)

	l := &ipLimiter{}
	l.touch(now.Add(-limiterIdleAfter - time.Minute))
	assert.True(t, l.idleSince(cutoff))

	l.touch(now)
	assert.False(t, l.idleSince(cutoff))
}

func TestSweepIdle(t *testing.T) {
	now := time.Now()
	limiters := &sync.Map{}

	stale := &ipLimiter{limiter: rate.NewLimiter(1, 1)}
	stale.touch(now.Add(-time.Hour))
	fresh := &ipLimiter{limiter: rate.NewLimiter(1, 1)}
	fresh.touch(now)
	limiters.Store("10.2.0.1", stale)
	limiters.Store("10.2.0.2", fresh)

	sweepIdle(limiters, now.Add(-limiterIdleAfter))

	_, ok := limiters.Load("10.2.0.1")
	assert.False(t, ok)
	_, ok = limiters.Load("10.2.0.2")
	assert.True(t, ok)
}
