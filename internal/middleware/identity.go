package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/phebueno/back-chat-uol/internal/service"
)

// IdentityKey 是身份标识在 Gin Context 中的存储键
const IdentityKey = "participant"

// identityHeader 是携带调用方身份的请求头。
// 身份就是参与者昵称本身 (name-based identity)，没有 token 层。
const identityHeader = "User"

// Identity 返回一个 Gin 中间件，从 User 请求头提取调用方身份，
// 清洗后写入 Context。头缺失时写入空串、放行：
// 各端点对"无身份"的响应码不同 (发消息 422、心跳 404、编辑 401)，
// 由具体 handler 决定，中间件不在这里中断请求。
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := service.Sanitize(c.GetHeader(identityHeader))
		c.Set(IdentityKey, name)
		c.Next()
	}
}

// CallerIdentity 从 Gin Context 读取当前请求的身份，未设置时为空串。
func CallerIdentity(c *gin.Context) string {
	return c.GetString(IdentityKey)
}
