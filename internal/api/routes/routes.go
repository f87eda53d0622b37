package routes

import (
	"github.com/gin-gonic/gin"

	"speech-relay/internal/api/handlers"
	"speech-relay/internal/api/middleware"
)

// RegisterRoutes registers the /api routes. The body limit applies only to
// uploads.
func RegisterRoutes(router *gin.RouterGroup, transcribe *handlers.TranscribeHandler, maxUploadBytes int64) {
	router.POST("/transcribe", middleware.BodyLimit(maxUploadBytes), transcribe.Transcribe)
}
