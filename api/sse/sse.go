// Package sse streams domain events to HTTP clients.
package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/events"
	"go.uber.org/zap"
)

const keepaliveEvery = 30 * time.Second

// Handler handles the SSE endpoint.
type Handler struct {
	pub       *events.Publisher
	logger    *zap.Logger
	keepalive time.Duration
}

// NewHandler creates a new SSE Handler.
func NewHandler(pub *events.Publisher, logger *zap.Logger) *Handler {
	return &Handler{pub: pub, logger: logger, keepalive: keepaliveEvery}
}

// ServeSSE handles GET /events. Every domain event is written as
// "event: <type>" followed by its JSON envelope.
func (h *Handler) ServeSSE(c *gin.Context) {
	ctx := c.Request.Context()
	evCh, unsub, err := h.pub.Subscribe(ctx)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event stream unavailable"})
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-evCh:
			if !ok {
				return
			}
			c.SSEvent(ev.Type, ev)
			c.Writer.Flush()

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-ctx.Done():
			return
		}
	}
}
