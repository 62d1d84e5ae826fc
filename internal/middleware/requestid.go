package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 是请求 ID 在 Gin Context 中的存储键
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID 返回一个 Gin 中间件，为每个请求生成 (或沿用上游传入的)
// UUID，写入 Context 和响应头，供访问日志关联同一请求的多条记录。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}
