package auth

import (
	"go-payway/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r gin.IRouter, handler *Handler, jwtSecret string, logger *zap.Logger) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", middleware.ContextLogger(logger), middleware.RateLimitByIP(0.08, 5), handler.Login)
		auth.POST("/logout", middleware.ContextLogger(logger), middleware.RateLimitByIP(2, 5), handler.Logout)
		auth.GET("/me",
			middleware.AuthMiddleware(jwtSecret),
			middleware.ContextLogger(logger),
			middleware.RateLimitByUser(2, 5),
			handler.Me,
		)
	}
}
