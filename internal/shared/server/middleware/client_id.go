package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const clientIDKey = "clientId"

// ClientID attaches a stable caller identity to the request context.
// Callers may supply X-Client-Id; anonymous requests get a fresh one,
// echoed back so the client can reuse it. The id namespaces object
// storage and rate limiting.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		id := strings.TrimSpace(c.GetHeader("X-Client-Id"))
		if id == "" {
			id = uuid.NewString()
			c.Set("isAnonymous", true)
		} else {
			c.Set("isAnonymous", false)
		}

		c.Set(clientIDKey, id)
		c.Writer.Header().Set("X-Client-Id", id)
		c.Next()
	}
}

// ClientIDFromContext fetches the client ID set by the ClientID middleware.
func ClientIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(clientIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
