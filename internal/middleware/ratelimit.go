package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RedisClient *redis.Client
	Limit       int
	Window      time.Duration
	KeyFunc     func(*gin.Context) string
}

// RateLimit 固定窗口限流中间件
func RateLimit(cfg *RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = userOrIPKey
	}

	return func(c *gin.Context) {
		if cfg.RedisClient == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := keyFunc(c)

		count, err := cfg.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			// Redis 不可用时放行
			c.Next()
			return
		}
		if count == 1 {
			cfg.RedisClient.Expire(ctx, key, cfg.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		if int(count) > cfg.Limit {
			ttl, _ := cfg.RedisClient.TTL(ctx, key).Result()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(cfg.Limit-int(count)))
		c.Next()
	}
}

// userOrIPKey 已登录按用户限流，否则按 IP
func userOrIPKey(c *gin.Context) string {
	if userID := GetUserID(c); userID > 0 {
		return cache.BuildKey(cache.KeyPrefixRateLimit, "user", fmt.Sprint(userID))
	}
	return cache.BuildKey(cache.KeyPrefixRateLimit, "ip", c.ClientIP())
}
