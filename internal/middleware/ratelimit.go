package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pointplay-backend/internal/logger"
	"pointplay-backend/internal/store"
)

// RateLimitMiddleware caps how often one session may hit the routes it is
// attached to. A limit of zero disables it.
func RateLimitMiddleware(limiter store.RateLimiter, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(ContextSessionID)
		if limit <= 0 || limiter == nil || sessionID == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), store.RateLimitKey(sessionID, action), limit, window)
		if err != nil {
			logger.Error("rate limit check failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
