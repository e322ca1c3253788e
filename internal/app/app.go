package app

import (
	"go-payway/internal/auth"
	"go-payway/internal/config"
	"go-payway/internal/employee"
	"go-payway/internal/messaging/kafka"
	"go-payway/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects Postgres and Redis, migrates the schema and mounts every
// module on router. The returned cleanup closes the connections.
func BuildApp(router *gin.Engine, cfg config.Config, logger *zap.Logger) (func(), error) {
	log := logger.Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Postgres(), 5)
	if err != nil {
		return nil, err
	}
	log.Info("database connection established")

	if err := gormDB.AutoMigrate(&employee.Employee{}, &auth.User{}, &kafka.OutboxEvent{}); err != nil {
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return nil, err
	}
	log.Info("redis connection established")

	cleanup := func() {
		_ = redisClient.Close()
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if err := registerModules(router, cfg, gormDB, redisClient, logger); err != nil {
		cleanup()
		return nil, err
	}

	return cleanup, nil
}
