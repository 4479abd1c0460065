package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/campus-api/internal/logging"
	"github.com/harentsoaR/campus-api/internal/utils"
)

// ErrorHandler turns the last error a handler recorded with c.Error into the
// response envelope. Unexpected errors are logged, reported and answered
// with a generic 500.
func ErrorHandler(logger *slog.Logger, reporter *logging.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		status, message := classify(last)
		if status >= http.StatusInternalServerError {
			logger.Error("unhandled error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", last.Err,
			)
			reporter.Report(last.Err, map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.FullPath(),
			})
		}
		c.AbortWithStatusJSON(status, utils.NewResponse(status, nil, message))
	}
}

func classify(ginErr *gin.Error) (int, string) {
	var apiErr *utils.APIError
	if errors.As(ginErr.Err, &apiErr) {
		return apiErr.StatusCode, apiErr.Message
	}
	var validationErrs validator.ValidationErrors
	if errors.As(ginErr.Err, &validationErrs) {
		return http.StatusBadRequest, describeValidation(validationErrs)
	}
	if ginErr.IsType(gin.ErrorTypeBind) {
		return http.StatusBadRequest, "Invalid request body"
	}
	return http.StatusInternalServerError, "Internal server error"
}

func describeValidation(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required", "notblank":
			fields = append(fields, fieldErr.Field()+" is required")
		case "email":
			fields = append(fields, fieldErr.Field()+" must be a valid email")
		case "min", "gte":
			fields = append(fields, fieldErr.Field()+" must be at least "+fieldErr.Param())
		case "max", "lte":
			fields = append(fields, fieldErr.Field()+" must be at most "+fieldErr.Param())
		default:
			fields = append(fields, fieldErr.Field()+" is invalid")
		}
	}
	return strings.Join(fields, ", ")
}
