package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout 给每个请求的 context 挂上截止时间。
// handler 链把 c.Request.Context() 一路传给数据库和 Redis 调用，
// 存储层挂掉时请求在这里到期，而不是占着连接等到天荒地老。
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
