package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go-payway/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency guards form posts that finish with a redirect. The first
// request carrying an Idempotency-Key runs normally and its redirect target is
// remembered for ttl; replays are answered with the same redirect, and a replay
// arriving while the first is still running gets 409.
func Idempotency(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	log := zap.L().Named("middleware.idempotency")
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(ContextUserID), idempKey)
		lockKey := cacheKey + ":lock"

		if location, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			log.Debug("idempotent replay", zap.String("key", cacheKey))
			c.Redirect(http.StatusSeeOther, location)
			c.Abort()
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			// Redis unavailable: let the request through rather than block form posts.
			log.Warn("idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING", "Your submission is still being processed", nil)
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusSeeOther {
			if location := c.Writer.Header().Get("Location"); location != "" {
				if err := rdb.Set(ctx, cacheKey, location, ttl).Err(); err != nil {
					log.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
				}
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			log.Warn("idempotency unlock failed", zap.String("key", lockKey), zap.Error(err))
		}
	}
}
