package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"campus-portal/backend/pkg/redis"
	"campus-portal/backend/pkg/response"
)

// RateLimit 基于 Redis 的限流中间件
// 按 IP + 路径限流；Redis 不可用时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 故障时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, 429, 10005, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
