package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/telemetry"
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
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		clientID, _ := c.Get(clientIDKey)
		isAnonymous, _ := c.Get("isAnonymous")
		customizationID, _ := c.Get("customizationId")

		telemetry.Info("request.complete", map[string]any{
			"request_id":       reqID,
			"method":           c.Request.Method,
			"path":             c.Request.URL.Path,
			"status":           status,
			"duration_ms":      float64(latency.Microseconds()) / 1000.0,
			"client_id":        clientID,
			"customization_id": customizationID,
			"is_anonymous":     isAnonymous,
			"client_ip":        c.ClientIP(),
			"user_agent":       c.Request.UserAgent(),
		})
	}
}
