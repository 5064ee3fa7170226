package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"github.com/kasuganosora/friendsvc/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServeSSE_StreamsEvents(t *testing.T) {
	pub := events.NewPublisher(testutil.SetupTestBroker(t), zap.NewNop())
	h := NewHandler(pub, zap.NewNop())
	h.keepalive = 20 * time.Millisecond

	r := gin.New()
	r.GET("/events", h.ServeSSE)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	// give the handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	pub.Publish(context.Background(), events.UserCreated, map[string]int{"id": 1})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after cancel")
	}

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(w.Result().Header.Get("Content-Type"), "text/event-stream"))
	assert.True(t, strings.HasPrefix(body, "event: connected\n"))
	assert.Contains(t, body, "event:user.created\n")
	assert.Contains(t, body, `"type":"user.created"`)
	assert.Contains(t, body, ": keepalive")
}
