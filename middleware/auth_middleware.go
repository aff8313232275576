package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/utils"
)

// ContextLineUserID holds the verified LIFF subject when token checks are on.
const ContextLineUserID = "lineUserID"

// LIFFAuth requires a valid LIFF ID token. A nil verifier makes it a
// pass-through.
func LIFFAuth(verifier *utils.IDTokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if verifier == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		tokenStr, err := utils.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": apperrors.MsgUnauthorized})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenStr)
		if err != nil {
			log.Info("rejected LIFF ID token",
				zap.String("request_id", c.GetString(ContextRequestID)),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": apperrors.MsgUnauthorized})
			return
		}

		c.Set(ContextLineUserID, claims.Subject)
		c.Next()
	}
}
