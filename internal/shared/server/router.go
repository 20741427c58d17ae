package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/customizations"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/services/health"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/config"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/metrics"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server/middleware"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server/respond"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/uploads"
)

const customizeRateGroup = "CUSTOMIZE"

// RouterDeps carries the handlers and services the router exposes.
type RouterDeps struct {
	Config               config.Config
	Health               *health.Service
	CustomizationHandler *customizations.Handler
	EnableUploads        bool
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.ClientID(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			customizeRateGroup: {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/api/v1/customizations") {
				return customizeRateGroup
			}
			return ""
		},
	}))

	api.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		payload := gin.H{"ok": true}
		if deps.Health != nil {
			checks := deps.Health.Status(c.Request.Context())
			payload = gin.H(checks)
			if ok, isBool := checks["ok"].(bool); isBool && !ok {
				status = http.StatusServiceUnavailable
			}
		}
		respond.JSON(c, status, payload)
	})

	if deps.CustomizationHandler != nil {
		deps.CustomizationHandler.RegisterRoutes(api)
	}
	if deps.EnableUploads {
		uploads.RegisterRoutes(api)
	}

	return r
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
