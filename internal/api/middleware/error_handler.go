package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"speech-relay/internal/api/errors"
)

// ErrorHandler middleware handles errors consistently across the API
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		var apiErr *errors.APIError

		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
		case error:
			// Log the original error for debugging
			logger.Error("Internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			apiErr = errors.NewInternalError(errors.InternalMessage)
		default:
			logger.Error("Unknown panic occurred",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
			apiErr = errors.NewInternalError(errors.InternalMessage)
		}

		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError is a helper function for handlers to return errors
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := errors.WrapError(err)
	if apiErr.Kind == errors.KindInternal {
		_ = c.Error(err)
	}
	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
