package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gmfsales/liffbackend/apperrors"
)

// BodyLimit limits request bodies to maxBytes.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// RequireJSON rejects POST requests whose Content-Type is not
// application/json with the same 400 as a malformed body.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		ct := c.GetHeader("Content-Type")
		if c.Request.Method == http.MethodPost && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "message": apperrors.MsgInvalidBody})
			return
		}
		c.Next()
	}
}
