package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"speech-relay/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateForm binds url-encoded or multipart form values into req and
// validates struct tags and domain rules
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindWith(req, binding.Form); err != nil {
		return validationError(err, "form")
	}

	if validator, ok := req.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func validationError(err error, fallbackField string) *errors.APIError {
	validationErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())

			switch fieldError.Tag() {
			case "required":
				validationErrors[field] = "is required"
			case "max":
				validationErrors[field] = "is too long"
			case "oneof":
				validationErrors[field] = "must be one of the allowed values"
			default:
				validationErrors[field] = "is invalid"
			}
		}
	} else {
		validationErrors[fallbackField] = "invalid " + fallbackField + " data"
	}

	return errors.NewValidationError("validation failed", validationErrors)
}
