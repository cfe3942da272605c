package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lms-backend/internal/clients/redis"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

// RateLimit throttles requests per client IP. Limiter failures let the
// request through.
func RateLimit(log *logger.Logger, limiter redis.RateLimiter, scope string) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	mwLog := log.With("Middleware", "RateLimit", "scope", scope)
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			mwLog.Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			observability.Current().IncRateLimited(scope)
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
