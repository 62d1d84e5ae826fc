package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/service"
)

// HandleServiceError 是业务错误到 HTTP 状态码的兜底映射。
// 身份类错误 (ErrNotJoined/ErrNotOwner) 的状态码因端点而异，
// 由各 handler 先行处理后才落到这里。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrInvalidLimit):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNameTaken):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrParticipantNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		// 内部细节不下发客户端，完整错误留在服务端日志里
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
