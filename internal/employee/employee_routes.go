package employee

import (
	"time"

	"go-payway/internal/antiforgery"
	"go-payway/internal/middleware"
	"go-payway/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const createIdempotencyTTL = 10 * time.Minute

// RegisterRoutes mounts the employee pages. The list is public; every other
// route needs a signed-in principal whose role holds the matching capability,
// and every POST must echo the anti-forgery token.
func RegisterRoutes(
	r gin.IRouter,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	employees := r.Group("/employee")
	{
		list := []gin.HandlerFunc{
			middleware.ContextLogger(logger),
			middleware.RateLimitByIP(5, 20),
			handler.List,
		}
		employees.GET("", list...)
		employees.GET("/index", list...)
	}

	admin := employees.Group("")
	admin.Use(middleware.AuthMiddleware(jwtSecret))
	admin.Use(middleware.ContextLogger(logger))
	{
		admin.GET("/create",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionCreate),
			handler.ShowCreateForm,
		)

		create := []gin.HandlerFunc{
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionCreate),
			antiforgery.Protect(handler.tokens),
		}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb, createIdempotencyTTL))
		}
		admin.POST("/create", append(create, handler.Create)...)

		admin.GET("/edit/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionUpdate),
			handler.ShowEditForm,
		)

		admin.POST("/edit",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionUpdate),
			antiforgery.Protect(handler.tokens),
			handler.Edit,
		)

		admin.GET("/detail/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionRead),
			handler.Detail,
		)

		admin.GET("/delete/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionDelete),
			handler.ShowDeleteConfirm,
		)

		admin.POST("/delete",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionDelete),
			antiforgery.Protect(handler.tokens),
			handler.Delete,
		)
	}
}
