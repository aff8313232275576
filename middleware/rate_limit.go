package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/metrics"
	"github.com/gmfsales/liffbackend/ratelimit"
)

// RateLimit keys on the client address. Limiter errors are logged and the
// request is let through.
func RateLimit(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request",
				zap.String("client_ip", key),
				zap.String("request_id", c.GetString(ContextRequestID)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !decision.Allowed {
			rle := &apperrors.RateLimitError{Key: key, RetryAfter: decision.RetryAfter}
			metrics.RateLimitedTotal.Inc()
			log.Info("rate limited", zap.String("request_id", c.GetString(ContextRequestID)), zap.Error(rle))

			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rle)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "message": apperrors.MsgRateLimited})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}

func retryAfterSeconds(e *apperrors.RateLimitError) int {
	secs := int(math.Ceil(e.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
