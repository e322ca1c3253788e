package app

import (
	"context"
	"net/http"
	"path/filepath"

	"go-payway/internal/antiforgery"
	"go-payway/internal/auth"
	"go-payway/internal/config"
	"go-payway/internal/employee"
	"go-payway/internal/messaging/kafka"
	"go-payway/internal/middleware"
	"go-payway/internal/rbac"
	"go-payway/internal/rbac/infra"
	"go-payway/internal/shared/response"
	"go-payway/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(enforcer, rbac.DefaultPolicies, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.AccessTokenTTL, logger)
	employeeService := employee.NewService(gormDB, employeeRepo, outboxRepo, rdb, cfg.EmployeeCacheTTL, logger)

	if created, err := authService.SeedAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return err
	} else if created {
		logger.Info("seeded admin account", zap.String("email", cfg.Admin.Email))
	}

	tokens := antiforgery.NewRedisStore(rdb, cfg.AntiForgeryTTL, antiforgery.WithLogger(logger.Named("antiforgery")))
	images := employee.NewImageStore(storage.NewLocalStorage(cfg.WebRoot, logger), cfg.MaxImageBytes)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, rbacService, cfg.IsProduction(), cfg.AccessTokenTTL, logger)
	employeeHandler := employee.NewHandler(employeeService, images, tokens, logger)

	// --- Routes Registration ---
	registry := prometheus.NewRegistry()
	registerOperational(router, registry, cfg.WebRoot)

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, cfg.JWTSecret, logger)
	}

	employee.RegisterRoutes(router, employeeHandler, rbacService, rdb, cfg.JWTSecret, logger)

	return nil
}

// registerOperational installs the cross-cutting middleware and the
// health, metrics and static image endpoints.
func registerOperational(router *gin.Engine, registry *prometheus.Registry, webRoot string) {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(registry)

	router.Use(middleware.RequestID(), metrics.Handler())

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.Static("/images", filepath.Join(webRoot, "images"))
}
