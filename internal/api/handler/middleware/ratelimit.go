package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailgate/internal/api/ratelimit"
)

// RateLimit rejects callers that exceed the per-IP request budget.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
