package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/middleware"
	"github.com/phebueno/back-chat-uol/internal/service"
)

// MessageHandler 封装了消息日志相关的 HTTP 处理逻辑
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建 MessageHandler 实例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// MessageRequest 定义发送和编辑消息共用的请求结构体
type MessageRequest struct {
	To   string `json:"to" binding:"required"`
	Text string `json:"text" binding:"required"`
	Kind string `json:"type" binding:"required"`
}

// Post 处理 POST /messages。
// 发送者身份来自 User 头；发送者未加入聊天室按照接口契约
// 与字段错误同样返回 422。
func (h *MessageHandler) Post(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Post: Invalid input format")
		ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid input: to, text and type are required")
		return
	}

	from := middleware.CallerIdentity(c)
	m, err := h.messageService.Post(c.Request.Context(), from, req.To, req.Text, req.Kind)
	if err != nil {
		if errors.Is(err, service.ErrNotJoined) {
			logrus.WithField("from", from).Warn("Handler.Post: Sender is not in the room")
			ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, m)
}

// List 处理 GET /messages?limit=N。
// limit 出现但不是正整数时按 422 拒绝；缺省表示返回全部可见消息。
func (h *MessageHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ErrorResponse(c, http.StatusUnprocessableEntity, service.ErrInvalidLimit.Error())
			return
		}
		limit = n
	}

	requester := middleware.CallerIdentity(c)
	messages, err := h.messageService.ListVisible(c.Request.Context(), requester, limit)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, messages)
}

// Edit 处理 PUT /messages/:id。
// 非作者返回 403，不在聊天室的请求者返回 401。
func (h *MessageHandler) Edit(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Edit: Invalid input format")
		ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid input: to, text and type are required")
		return
	}

	requester := middleware.CallerIdentity(c)
	m, err := h.messageService.Edit(c.Request.Context(), id, requester, req.To, req.Text, req.Kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwner):
			ErrorResponse(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrNotJoined):
			ErrorResponse(c, http.StatusUnauthorized, err.Error())
		default:
			HandleServiceError(c, err)
		}
		return
	}
	SuccessResponse(c, http.StatusOK, m)
}

// Delete 处理 DELETE /messages/:id。非作者返回 401。
func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := h.messageID(c)
	if !ok {
		return
	}

	requester := middleware.CallerIdentity(c)
	if err := h.messageService.Delete(c.Request.Context(), id, requester); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// messageID 解析路径参数 :id，非正整数按 422 拒绝
func (h *MessageHandler) messageID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid message id")
		return 0, false
	}
	return uint(id), true
}
