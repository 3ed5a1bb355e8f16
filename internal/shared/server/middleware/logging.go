package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	DocumentIDKey = "documentId"
	JobIDKey      = "jobId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		documentID, _ := c.Get(DocumentIDKey)
		jobID, _ := c.Get(JobIDKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"document_id": documentID,
			"job_id":      jobID,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
