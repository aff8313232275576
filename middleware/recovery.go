package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/monitoring"
)

// Recovery turns a panic into a generic 500 and reports it.
func Recovery(log *zap.Logger, reporter monitoring.Reporter) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		requestID := c.GetString(ContextRequestID)

		log.Error("panic recovered", zap.String("request_id", requestID), zap.Error(err))
		reporter.CaptureException(err, map[string]string{
			"component":  "http",
			"code":       string(apperrors.CodeUnexpected),
			"request_id": requestID,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "message": apperrors.MsgUnexpected})
	})
}
