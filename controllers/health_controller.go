package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gmfsales/liffbackend/dto"
)

const healthMessage = "GMF LIFF Backend is running"

func Health(persistenceEnabled, monitoringEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status:             "ok",
			Message:            healthMessage,
			PersistenceEnabled: persistenceEnabled,
			MonitoringEnabled:  monitoringEnabled,
			Timestamp:          time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}
