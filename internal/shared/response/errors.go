package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"grocery-backend/internal/shared/apperror"
	"grocery-backend/pkg/logger"
)

// HandleError renders any service error.
// AppErrors keep their status and code, ozzo validation errors become 400,
// everything else is logged and hidden behind a 500.
func HandleError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logError(c, err)
		}

		var details interface{}
		if len(appErr.Details) > 0 {
			details = appErr.Details
		}
		ErrorResponse(c, appErr.HTTPStatus, appErr.Code, appErr.Message, details)
		return
	}

	var validationErrs ozzo.Errors
	if errors.As(err, &validationErrs) {
		ValidationError(c, validationErrs)
		return
	}

	logError(c, err)
	ErrorResponse(c, http.StatusInternalServerError, apperror.CodeInternal, "internal server error", nil)
}

// ValidationError renders ozzo field errors as {field: message}.
func ValidationError(c *gin.Context, err error) {
	var details interface{} = err.Error()

	var validationErrs ozzo.Errors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for field, fieldErr := range validationErrs {
			fields[field] = fieldErr.Error()
		}
		details = fields
	}

	ErrorResponse(c, http.StatusBadRequest, apperror.CodeValidationFailed, "invalid input", details)
}

func logError(c *gin.Context, err error) {
	logger.ErrorWithFields("request failed", err, map[string]interface{}{
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	})
}
