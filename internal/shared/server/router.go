package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/documents"
	"doctoc-backend/internal/shared/config"
	"doctoc-backend/internal/shared/metrics"
	"doctoc-backend/internal/shared/server/middleware"
	"doctoc-backend/internal/shared/server/respond"
	"doctoc-backend/internal/toc"
)

// Rate limit groups.
const (
	GroupDefault = "DEFAULT"
	GroupExtract = "EXTRACT"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	DocumentHandler *documents.Handler
	TOCHandler      *toc.Handler
	RateLimiter     *middleware.RateLimiter
	// Health reports dependency health for /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig(deps)),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(c.Request.Context()); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "unhealthy", err.Error(), nil)
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.TOCHandler != nil {
		deps.TOCHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(deps RouterDeps) middleware.RateLimitConfig {
	extract := middleware.RateLimitRule{Rate: deps.Config.ExtractRateLimit, Burst: deps.Config.ExtractBurst}
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			GroupExtract: extract,
		},
		DefaultGroup: GroupDefault,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == toc.RouteTOC {
				return GroupExtract
			}
			return GroupDefault
		},
		Limiter: deps.RateLimiter,
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
