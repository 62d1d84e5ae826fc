package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/middleware"
	"github.com/phebueno/back-chat-uol/internal/repository"
	"github.com/phebueno/back-chat-uol/internal/repository/mocks"
	"github.com/phebueno/back-chat-uol/internal/service"
)

// newTestRouter 组装一个不带限流的最小路由，仓库全部用 mock 替换
func newTestRouter(participantRepo *mocks.ParticipantRepository, messageRepo *mocks.MessageRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	presenceService := service.NewPresenceService(participantRepo, messageRepo)
	messageService := service.NewMessageService(messageRepo, participantRepo)
	participantHandler := NewParticipantHandler(presenceService)
	messageHandler := NewMessageHandler(messageService)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Identity())
	r.POST("/participants", participantHandler.Join)
	r.GET("/participants", participantHandler.List)
	r.POST("/messages", messageHandler.Post)
	r.GET("/messages", messageHandler.List)
	r.PUT("/messages/:id", messageHandler.Edit)
	r.DELETE("/messages/:id", messageHandler.Delete)
	r.POST("/status", participantHandler.Heartbeat)
	return r
}

func doJSON(r *gin.Engine, method, path, body, user string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("User", user)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJoinEndpoint(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepository)
	messageRepo := new(mocks.MessageRepository)
	r := newTestRouter(participantRepo, messageRepo)

	// 首次加入: 201
	participantRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Participant) bool {
		return p.Name == "Alice"
	})).Return(nil).Once()
	messageRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil).Once()

	w := doJSON(r, "POST", "/participants", `{"name":"Alice"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code, "Expected status 201 Created")
	assert.Contains(t, w.Body.String(), "Alice")

	// 重名加入: 409
	participantRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Participant")).
		Return(repository.ErrDuplicateEntry).Once()

	w = doJSON(r, "POST", "/participants", `{"name":"Alice"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code, "Expected status 409 Conflict")
}

func TestJoinEndpoint_InvalidBody(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepository)
	messageRepo := new(mocks.MessageRepository)
	r := newTestRouter(participantRepo, messageRepo)

	// name 缺失
	w := doJSON(r, "POST", "/participants", `{}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// name 清洗后为空
	w = doJSON(r, "POST", "/participants", `{"name":"<b> </b>"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 校验失败不触达存储层
	participantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListParticipantsEndpoint(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepository)
	messageRepo := new(mocks.MessageRepository)
	r := newTestRouter(participantRepo, messageRepo)

	participantRepo.On("FindAll", mock.Anything).
		Return([]domain.Participant{{Name: "Alice"}, {Name: "Bob"}}, nil).Once()

	w := doJSON(r, "GET", "/participants", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
	assert.Contains(t, w.Body.String(), "Bob")
}

func TestHeartbeatEndpoint(t *testing.T) {
	participantRepo := new(mocks.ParticipantRepository)
	messageRepo := new(mocks.MessageRepository)
	r := newTestRouter(participantRepo, messageRepo)

	// 在场参与者: 200
	participantRepo.On("UpdateLastActivity", mock.Anything, "Alice", mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	w := doJSON(r, "POST", "/status", "", "Alice")
	assert.Equal(t, http.StatusOK, w.Code)

	// 未知身份: 404
	participantRepo.On("UpdateLastActivity", mock.Anything, "Ghost", mock.AnythingOfType("time.Time")).
		Return(repository.ErrParticipantNotFound).Once()
	w = doJSON(r, "POST", "/status", "", "Ghost")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// User 头缺失: 同样 404，且不触达存储层
	w = doJSON(r, "POST", "/status", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
