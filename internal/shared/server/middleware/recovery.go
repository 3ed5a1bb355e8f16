package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/shared/server/respond"
	"doctoc-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 with the standard error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			documentID, _ := c.Get(DocumentIDKey)
			telemetry.Error("panic", map[string]any{
				"request_id":  RequestIDFromContext(c),
				"error":       rec,
				"stack":       string(debug.Stack()),
				"path":        c.Request.URL.Path,
				"route":       c.FullPath(),
				"method":      c.Request.Method,
				"document_id": documentID,
			})
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
