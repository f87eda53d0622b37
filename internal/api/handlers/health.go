package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"speech-relay/internal/api/dto"
)

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}
