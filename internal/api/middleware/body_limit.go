package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speech-relay/internal/api/errors"
)

// PayloadTooLargeMessage is the 413 body text
const PayloadTooLargeMessage = "file too large, please upload audio smaller than 10MB"

// BodyLimit rejects requests whose declared Content-Length exceeds limit and
// caps the body reader for the rest. Handlers detect an undeclared overflow as
// *http.MaxBytesError while parsing.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			HandleError(c, errors.NewPayloadTooLargeError(PayloadTooLargeMessage))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
