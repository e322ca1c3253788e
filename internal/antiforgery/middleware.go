package antiforgery

import (
	"errors"
	"net/http"

	"go-payway/internal/shared/apperror"
	"go-payway/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionKey is the gin context key whose value binds a token to its holder.
const SessionKey = "user_id"

// Protect rejects state-changing requests that do not echo the caller's
// anti-forgery token in the X-CSRF-Token header or the form body.
func Protect(store Store) gin.HandlerFunc {
	log := zap.L().Named("antiforgery.middleware")
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderName)
		if token == "" {
			token = c.PostForm(FormField)
		}

		err := store.Validate(c.Request.Context(), c.GetString(SessionKey), token)
		if err == nil {
			c.Next()
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			log.Warn("anti-forgery check failed",
				zap.String("path", c.FullPath()),
				zap.String("code", appErr.Code),
			)
			response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
			c.Abort()
			return
		}

		log.Error("anti-forgery store failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "Internal server error", nil)
		c.Abort()
	}
}
