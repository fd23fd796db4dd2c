package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"todo_backend/internal/apperr"
	"todo_backend/internal/http/response"
	"todo_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler is the single point converting every failure attached to the
// gin context into the response envelope. Status policy:
//   - authentication failures -> 401
//   - field validation -> 400 with per-field detail under data.errors
//   - not found -> 400 (kept from the original API: 404 and 403 collapse to
//     a client error so existence never leaks)
//   - anything unrecognized -> 500 with a generic message; the cause is
//     logged server-side and never returned to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		if len(c.Errors) > 1 {
			msgs := make([]string, 0, len(c.Errors))
			for _, e := range c.Errors {
				msgs = append(msgs, e.Error())
			}
			response.Fail(c, http.StatusBadRequest, "Multiple errors occurred.", gin.H{"errors": msgs})
			return
		}

		writeError(c, c.Errors[0].Err)
	}
}

func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindAuthentication:
			if appErr.Fields != nil {
				response.Fail(c, http.StatusUnauthorized, appErr.Message, gin.H{"errors": appErr.Fields})
				return
			}
			response.Fail(c, http.StatusUnauthorized, appErr.Message, nil)
		case apperr.KindValidation:
			response.Fail(c, http.StatusBadRequest, appErr.Message, gin.H{"errors": appErr.Fields})
		case apperr.KindNotFound:
			response.Fail(c, http.StatusBadRequest, appErr.Message, nil)
		default:
			logger.Error("unhandled error", "path", c.FullPath(), "error", err)
			response.Fail(c, http.StatusInternalServerError, appErr.Message, nil)
		}
		return
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		response.Fail(c, http.StatusBadRequest, "Validation failed.", gin.H{"errors": FieldErrors(vErrs)})
		return
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		response.Fail(c, http.StatusBadRequest, "JSON parse error.", nil)
		return
	}

	logger.Error("unhandled error", "path", c.FullPath(), "error", err)
	response.Fail(c, http.StatusInternalServerError, "An unexpected error occurred.", nil)
}

// FieldErrors converts validator output to per-field message lists keyed by
// the JSON field name.
func FieldErrors(vErrs validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(vErrs))
	for _, fe := range vErrs {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], fieldMessage(fe))
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this field has no more than " + fe.Param() + " characters."
	default:
		return "This field is invalid."
	}
}

// Recovery rewrites panics into the 500 envelope instead of gin's default
// empty body. The panic value is logged with the request path.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		response.Fail(c, http.StatusInternalServerError, "An unexpected error occurred.", nil)
		c.Abort()
	})
}
