package http

import (
	"net/http"

	customErrors "github.com/classmate-hq/auth-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

// ErrorEnvelope is the uniform failure body of the API.
type ErrorEnvelope struct {
	Error   bool        `json:"error"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func AbortWithError(c *gin.Context, err error) {
	code, message := statusOf(err)
	c.AbortWithStatusJSON(code, ErrorEnvelope{
		Error:   true,
		Code:    code,
		Message: message,
	})
}

// statusOf maps the error taxonomy onto HTTP statuses: every authentication
// and session kind is a 401, malformed input is a 400. "Not found" or "wrong
// password" never leak through a login response — both collapse into the same
// opaque message.
func statusOf(err error) (int, string) {
	switch {
	case customErrors.IsInvalidArgument(err):
		return http.StatusBadRequest, err.Error()
	case customErrors.IsInvalidCredentials(err), customErrors.IsUserNotFound(err):
		return http.StatusUnauthorized, "invalid_username_password"
	case customErrors.IsAccountDeleted(err):
		return http.StatusUnauthorized, "user_has_been_deleted"
	case customErrors.IsAccountInactive(err):
		return http.StatusUnauthorized, "user_blocked"
	case customErrors.IsSessionTerminated(err):
		return http.StatusUnauthorized, "This session is terminated because of new login into different device or browser."
	case customErrors.IsTokenError(err):
		return http.StatusUnauthorized, "Token is invalid or expired"
	case customErrors.IsNotFound(err):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
