package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/repository"
	"github.com/phebueno/back-chat-uol/internal/repository/mocks"
	"github.com/phebueno/back-chat-uol/internal/service"
)

func newMessageService(t *testing.T) (*service.MessageService, *mocks.MessageRepository, *mocks.ParticipantRepository) {
	t.Helper()
	mockMessageRepo := new(mocks.MessageRepository)
	mockParticipantRepo := new(mocks.ParticipantRepository)
	return service.NewMessageService(mockMessageRepo, mockParticipantRepo), mockMessageRepo, mockParticipantRepo
}

// --- 测试 Post 方法 ---

func TestMessageService_Post_Success(t *testing.T) {
	// Arrange
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	mockParticipantRepo.On("FindByName", ctx, "Alice").
		Return(&domain.Participant{Name: "Alice"}, nil).Once()
	mockMessageRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.Message) bool {
		assert.Equal(t, "Alice", m.From)
		assert.Equal(t, domain.Everyone, m.To)
		assert.Equal(t, "hi", m.Text)
		assert.Equal(t, domain.KindBroadcast, m.Kind)
		// 追加时刻定格的格式化时间 "HH:MM:SS"
		assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`), m.Time)
		return true
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Message).ID = 7 // 模拟数据库分配的自增 ID
	}).Return(nil).Once()

	// Act
	m, err := messageService.Post(ctx, "Alice", domain.Everyone, "hi", domain.KindBroadcast)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, uint(7), m.ID, "返回的消息应带有分配的 ID")

	mockMessageRepo.AssertExpectations(t)
	mockParticipantRepo.AssertExpectations(t)
}

func TestMessageService_Post_SanitizesText(t *testing.T) {
	// Arrange: 正文里的 HTML 应在入库前被剥掉
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	mockParticipantRepo.On("FindByName", ctx, "Alice").
		Return(&domain.Participant{Name: "Alice"}, nil).Once()
	mockMessageRepo.On("Create", ctx, mock.MatchedBy(func(m *domain.Message) bool {
		return m.Text == "hello world"
	})).Return(nil).Once()

	// Act
	_, err := messageService.Post(ctx, "Alice", "Bob", "  <script>x</script>hello <b>world</b>  ", domain.KindPrivate)

	// Assert
	assert.NoError(t, err)
	mockMessageRepo.AssertExpectations(t)
}

func TestMessageService_Post_SenderNotJoined(t *testing.T) {
	// Arrange: Bob 从未加入聊天室
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	mockParticipantRepo.On("FindByName", ctx, "Bob").
		Return(nil, repository.ErrParticipantNotFound).Once()

	// Act
	_, err := messageService.Post(ctx, "Bob", domain.Everyone, "hi", domain.KindBroadcast)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotJoined))
	mockMessageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMessageService_Post_InvalidInput(t *testing.T) {
	// 字段缺失或 kind 非法都在任何存储访问之前被拒绝。
	// status 不是客户端可发送的类型：它只能由系统路径写入。
	cases := []struct {
		name           string
		from, to, text string
		kind           string
	}{
		{"missing from", "", domain.Everyone, "hi", domain.KindBroadcast},
		{"missing to", "Alice", "", "hi", domain.KindBroadcast},
		{"missing text", "Alice", domain.Everyone, "   ", domain.KindBroadcast},
		{"unknown kind", "Alice", domain.Everyone, "hi", "shout"},
		{"status kind from client", "Alice", domain.Everyone, "hi", domain.KindStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)

			_, err := messageService.Post(context.Background(), tc.from, tc.to, tc.text, tc.kind)

			require.Error(t, err)
			assert.True(t, errors.Is(err, service.ErrInvalidMessage))
			mockMessageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			mockParticipantRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
		})
	}
}

// --- 测试可见性过滤 ---

func TestMessageService_ListVisible_VisibilityMatrix(t *testing.T) {
	// 日志里有三类消息，逐一验证每条消息恰好被预期的请求者集合看到:
	//   #1 broadcast (Alice -> everyone): 所有人可见
	//   #2 status    (Alice -> everyone): 所有人可见
	//   #3 private   (Alice -> Bob):      只有 Alice 和 Bob 可见
	log := []domain.Message{
		{ID: 1, From: "Alice", To: domain.Everyone, Text: "hi", Kind: domain.KindBroadcast},
		{ID: 2, From: "Alice", To: domain.Everyone, Text: "joined the room", Kind: domain.KindStatus},
		{ID: 3, From: "Alice", To: "Bob", Text: "psst", Kind: domain.KindPrivate},
	}

	expected := map[string][]uint{
		"Alice": {1, 2, 3},
		"Bob":   {1, 2, 3},
		"Carol": {1, 2},
	}

	for requester, wantIDs := range expected {
		t.Run(requester, func(t *testing.T) {
			messageService, mockMessageRepo, _ := newMessageService(t)
			ctx := context.Background()
			mockMessageRepo.On("FindAllOrdered", ctx).Return(log, nil).Once()

			visible, err := messageService.ListVisible(ctx, requester, 0)

			assert.NoError(t, err)
			gotIDs := make([]uint, 0, len(visible))
			for _, m := range visible {
				gotIDs = append(gotIDs, m.ID)
			}
			assert.Equal(t, wantIDs, gotIDs, "请求者 %s 的可见消息集合不符", requester)
		})
	}
}

func TestMessageService_ListVisible_Limit(t *testing.T) {
	// Arrange: 五条广播，limit=2 应返回最近两条且保持原顺序
	log := make([]domain.Message, 0, 5)
	for i := uint(1); i <= 5; i++ {
		log = append(log, domain.Message{ID: i, From: "Alice", To: domain.Everyone, Kind: domain.KindBroadcast})
	}

	messageService, mockMessageRepo, _ := newMessageService(t)
	ctx := context.Background()
	mockMessageRepo.On("FindAllOrdered", ctx).Return(log, nil).Twice()

	// Act / Assert: limit 截断保留末尾
	visible, err := messageService.ListVisible(ctx, "Carol", 2)
	assert.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, uint(4), visible[0].ID)
	assert.Equal(t, uint(5), visible[1].ID)

	// limit 超过可见消息数时返回全部，不是错误
	visible, err = messageService.ListVisible(ctx, "Carol", 50)
	assert.NoError(t, err)
	assert.Len(t, visible, 5)
}

func TestMessageService_ListVisible_NegativeLimit(t *testing.T) {
	messageService, mockMessageRepo, _ := newMessageService(t)

	_, err := messageService.ListVisible(context.Background(), "Alice", -1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidLimit))
	mockMessageRepo.AssertNotCalled(t, "FindAllOrdered", mock.Anything)
}

// --- 测试 Edit 方法 ---

func TestMessageService_Edit_Success(t *testing.T) {
	// Arrange
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice", To: "Bob", Text: "old", Kind: domain.KindPrivate, Time: "10:00:00"}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()
	mockParticipantRepo.On("FindByName", ctx, "Alice").
		Return(&domain.Participant{Name: "Alice"}, nil).Once()
	mockMessageRepo.On("Update", ctx, mock.MatchedBy(func(m *domain.Message) bool {
		// to/text/kind 被替换；from、id、time 保持不变
		assert.Equal(t, uint(3), m.ID)
		assert.Equal(t, "Alice", m.From)
		assert.Equal(t, "10:00:00", m.Time)
		assert.Equal(t, domain.Everyone, m.To)
		assert.Equal(t, "new text", m.Text)
		assert.Equal(t, domain.KindBroadcast, m.Kind)
		return true
	})).Return(nil).Once()

	// Act
	m, err := messageService.Edit(ctx, 3, "Alice", domain.Everyone, "<p>new text</p>", domain.KindBroadcast)

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, m)
	mockMessageRepo.AssertExpectations(t)
}

func TestMessageService_Edit_NotFound(t *testing.T) {
	messageService, mockMessageRepo, _ := newMessageService(t)
	ctx := context.Background()

	mockMessageRepo.On("FindByID", ctx, uint(99)).Return(nil, repository.ErrMessageNotFound).Once()

	_, err := messageService.Edit(ctx, 99, "Alice", "Bob", "x", domain.KindPrivate)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMessageNotFound))
}

func TestMessageService_Edit_NotOwner(t *testing.T) {
	// Arrange: Mallory 不是消息作者
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice", To: "Bob", Text: "old", Kind: domain.KindPrivate}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()

	// Act
	_, err := messageService.Edit(ctx, 3, "Mallory", "Bob", "hacked", domain.KindPrivate)

	// Assert: 拒绝且消息保持原样 (没有任何写入)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotOwner))
	mockMessageRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockParticipantRepo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything)
}

func TestMessageService_Edit_RequesterLeftRoom(t *testing.T) {
	// Arrange: 作者本人但已被清出聊天室
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice", To: "Bob", Kind: domain.KindPrivate}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()
	mockParticipantRepo.On("FindByName", ctx, "Alice").
		Return(nil, repository.ErrParticipantNotFound).Once()

	// Act
	_, err := messageService.Edit(ctx, 3, "Alice", "Bob", "x", domain.KindPrivate)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotJoined))
	mockMessageRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestMessageService_Edit_InvalidFields(t *testing.T) {
	messageService, mockMessageRepo, mockParticipantRepo := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice", Kind: domain.KindPrivate}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()
	mockParticipantRepo.On("FindByName", ctx, "Alice").
		Return(&domain.Participant{Name: "Alice"}, nil).Once()

	_, err := messageService.Edit(ctx, 3, "Alice", "Bob", "   ", domain.KindPrivate)

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidMessage))
	mockMessageRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// --- 测试 Delete 方法 ---

func TestMessageService_Delete_Success(t *testing.T) {
	messageService, mockMessageRepo, _ := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice"}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()
	mockMessageRepo.On("DeleteByID", ctx, uint(3)).Return(nil).Once()

	err := messageService.Delete(ctx, 3, "Alice")

	assert.NoError(t, err)
	mockMessageRepo.AssertExpectations(t)
}

func TestMessageService_Delete_NotOwner(t *testing.T) {
	messageService, mockMessageRepo, _ := newMessageService(t)
	ctx := context.Background()

	existing := &domain.Message{ID: 3, From: "Alice"}
	mockMessageRepo.On("FindByID", ctx, uint(3)).Return(existing, nil).Once()

	err := messageService.Delete(ctx, 3, "Mallory")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrNotOwner))
	mockMessageRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestMessageService_Delete_NotFound(t *testing.T) {
	messageService, mockMessageRepo, _ := newMessageService(t)
	ctx := context.Background()

	mockMessageRepo.On("FindByID", ctx, uint(99)).Return(nil, repository.ErrMessageNotFound).Once()

	err := messageService.Delete(ctx, 99, "Alice")

	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMessageNotFound))
}
