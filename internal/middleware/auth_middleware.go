package middleware

import (
	"errors"
	"strings"

	autherrors "go-payway/internal/auth/errors"
	"go-payway/internal/shared/apperror"
	"go-payway/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"

	AccessTokenCookie = "access_token"
)

func abortWith(c *gin.Context, e *apperror.AppError, message string) {
	if message == "" {
		message = e.Message
	}
	response.Error(c, e.HTTPStatus, e.Code, message, nil)
	c.Abort()
}

// AuthMiddleware requires a valid HS256 access token from the Authorization
// header or the access_token cookie, and exposes user_id and role on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			e := autherrors.ErrTokenNotFound
			abortWith(c, e, "")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, autherrors.ErrInvalidToken
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			e := autherrors.ErrInvalidToken
			if errors.Is(err, jwt.ErrTokenExpired) {
				e = autherrors.ErrTokenExpired
			}
			abortWith(c, e, "")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			e := autherrors.ErrInvalidToken
			abortWith(c, e, "Invalid token claims")
			return
		}

		userID, ok := claims[ContextUserID].(string)
		if !ok || userID == "" {
			e := autherrors.ErrInvalidToken
			abortWith(c, e, "User ID not found in token")
			return
		}

		role, _ := claims[ContextRole].(string)

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)

		c.Next()
	}
}
