// Package router builds the gin engine for the translate API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/auth"
	"github.com/pricofy/translate-gateway/internal/handler"
	"github.com/pricofy/translate-gateway/internal/metrics"
)

// New creates a new router with all routes configured.
// A nil m disables both request metrics and the /metrics route.
func New(h *handler.Handler, gate *auth.Gate, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Middleware
	r.Use(requestID())
	r.Use(ginLogger(logger))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(metricsMiddleware(m))

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authenticated := r.Group("/", authMiddleware(gate, logger))
	{
		authenticated.GET("/", h.Root)
		authenticated.POST("/translate", h.Translate)
	}

	r.NoRoute(authMiddleware(gate, logger), h.NotFound)

	return r
}
