package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Middleware rejects requests over the limit with 429, keyed by client IP.
// Limiter failures fail open: an unreachable Redis must not lock
// everybody out.
func Middleware(logger zerolog.Logger, limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c, c.ClientIP())
		if err != nil {
			logger.Error().
				Err(err).
				Str("client_ip", c.ClientIP()).
				Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if !allowed {
			logger.Warn().
				Str("client_ip", c.ClientIP()).
				Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "too many requests",
			})
			return
		}

		c.Next()
	}
}
