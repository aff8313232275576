package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/dto"
	"github.com/gmfsales/liffbackend/middleware"
	"github.com/gmfsales/liffbackend/models"
	"github.com/gmfsales/liffbackend/services"
)

const (
	MsgSubmitted          = "Form submitted successfully"
	MsgSavedNotNotified   = "Inquiry saved but notification failed"
	MsgNotificationFailed = "Failed to send notification"
)

// SubmitInquiry handles POST /liff-submit. The pipeline keeps running if
// the client disconnects, bounded by requestTimeout.
func SubmitInquiry(svc services.SubmissionService, requestTimeout time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.InquiryInput
		if err := c.ShouldBindJSON(&body); err != nil {
			log.Info("invalid request body",
				zap.String("request_id", c.GetString(middleware.ContextRequestID)),
				zap.Error(err),
			)
			c.JSON(http.StatusBadRequest, dto.SubmitResponse{OK: false, Message: apperrors.MsgInvalidBody})
			return
		}

		if sub := c.GetString(middleware.ContextLineUserID); sub != "" {
			if uid := strings.TrimSpace(body.UserID); uid != "" && uid != sub {
				c.JSON(http.StatusUnauthorized, dto.SubmitResponse{OK: false, Message: apperrors.MsgUnauthorized})
				return
			}
		}

		meta := models.RequestMeta{
			RequestID:   c.GetString(middleware.ContextRequestID),
			ClientIP:    c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			SubmittedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), requestTimeout)
		defer cancel()

		result, err := svc.Submit(ctx, body, meta)
		if err != nil {
			var ve *apperrors.ValidationError
			if errors.As(err, &ve) {
				c.JSON(http.StatusBadRequest, dto.SubmitResponse{OK: false, Message: ve.Message})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, dto.SubmitResponse{OK: false, Message: apperrors.MsgUnexpected})
			return
		}

		switch result.Outcome {
		case services.OutcomeDelivered:
			c.JSON(http.StatusOK, dto.SubmitResponse{OK: true, Message: MsgSubmitted, InquiryID: result.InquiryID})
		case services.OutcomeSavedNotNotified:
			c.JSON(http.StatusInternalServerError, dto.SubmitResponse{OK: false, Message: MsgSavedNotNotified, InquiryID: result.InquiryID})
		default:
			c.JSON(http.StatusInternalServerError, dto.SubmitResponse{OK: false, Message: MsgNotificationFailed})
		}
	}
}
