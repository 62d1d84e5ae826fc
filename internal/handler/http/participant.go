package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/middleware"
	"github.com/phebueno/back-chat-uol/internal/service"
)

// ParticipantHandler 封装了参与者生命周期相关的 HTTP 处理逻辑
type ParticipantHandler struct {
	presenceService *service.PresenceService
}

// NewParticipantHandler 创建 ParticipantHandler 实例
func NewParticipantHandler(presenceService *service.PresenceService) *ParticipantHandler {
	return &ParticipantHandler{presenceService: presenceService}
}

// JoinRequest 定义加入聊天室请求的结构体
type JoinRequest struct {
	Name string `json:"name" binding:"required"`
}

// Join 处理 POST /participants
func (h *ParticipantHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Join: Invalid input format")
		ErrorResponse(c, http.StatusUnprocessableEntity, "Invalid input: name is required")
		return
	}

	participant, err := h.presenceService.Join(c.Request.Context(), req.Name)
	if err != nil {
		logrus.WithError(err).WithField("name", req.Name).Warn("Handler.Join: Join failed")
		HandleServiceError(c, err)
		return
	}

	logrus.WithField("participant", participant.Name).Info("Handler.Join: Participant joined")
	SuccessResponse(c, http.StatusCreated, gin.H{"name": participant.Name})
}

// List 处理 GET /participants
func (h *ParticipantHandler) List(c *gin.Context) {
	participants, err := h.presenceService.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, participants)
}

// Heartbeat 处理 POST /status。
// 身份来自 User 头；头缺失和参与者不存在都按 404 处理。
func (h *ParticipantHandler) Heartbeat(c *gin.Context) {
	name := middleware.CallerIdentity(c)

	err := h.presenceService.Heartbeat(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
