package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
	"github.com/BruksfildServices01/consultorio-api/internal/infra/ratelimit"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
)

// RateLimit throttles by client IP. A failing store lets traffic through.
func RateLimit(limiter ratelimit.Limiter, logger *logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.Default()
	}
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			httperr.Write(c, http.StatusTooManyRequests, "rate_limited", "Demasiadas solicitudes, intente más tarde")
			c.Abort()
			return
		}
		c.Next()
	}
}
