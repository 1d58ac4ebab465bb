package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/arampall/finance-tracker/internal/errors"
	"github.com/arampall/finance-tracker/internal/logger"
)

// InternalErrorMessage is shown for errors that are not AppErrors.
const InternalErrorMessage = "Internal server error"

// ErrorHandler returns a Gin middleware that renders errors set on the Gin
// context with the named HTML template. The template receives Status and
// Message. Unexpected errors are logged and shown generically.
func ErrorHandler(template string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := Describe(err)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Named("web").Errorw("unexpected error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", RequestID(c),
			)
		}
		c.HTML(status, template, gin.H{"Status": status, "Message": message})
	}
}

// Describe maps err to the HTTP status and message shown to the user.
// AppErrors keep their status, except that transport failures with no status
// or an upstream 5xx become 502.
func Describe(err error) (int, string) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, InternalErrorMessage
	}
	status := appErr.StatusCode
	if apperrors.IsTransport(err) && (status == 0 || status >= http.StatusInternalServerError) {
		status = http.StatusBadGateway
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, apperrors.UserMessage(err, http.StatusText(status))
}
