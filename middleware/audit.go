package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/friendsvc/audit"
)

// Audit records every state-changing request (anything but GET, HEAD and
// OPTIONS) through svc after the handler has run.
func Audit(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		action := c.FullPath()
		if action == "" {
			action = c.Request.URL.Path
		}
		entry := audit.Entry{
			TraceID:    GetTraceID(c),
			Action:     c.Request.Method + " " + action,
			Path:       c.Request.URL.Path,
			Status:     c.Writer.Status(),
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if q := c.Request.URL.Query(); len(q) > 0 {
			entry.Request = q
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		}
		svc.Log(entry)
	}
}
