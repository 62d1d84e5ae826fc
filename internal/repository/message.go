package repository

import (
	"context"

	"github.com/phebueno/back-chat-uol/internal/domain"
)

// MessageRepository 定义了消息日志的存储和查询。
// 消息日志是仅追加的有序序列：FindAllOrdered 的返回顺序即聊天时间线。
type MessageRepository interface {
	// Create 追加一条新消息，数据库生成的 ID 回填到 m。
	Create(ctx context.Context, m *domain.Message) error

	// FindByID 根据消息 ID 查找消息。
	// 如果消息不存在，返回 ErrMessageNotFound。
	FindByID(ctx context.Context, id uint) (*domain.Message, error)

	// FindAllOrdered 按插入顺序返回全部消息。
	// 可见性过滤在 service 层逐条求值，不下推到 SQL。
	FindAllOrdered(ctx context.Context) ([]domain.Message, error)

	// Update 保存对已有消息的修改。
	Update(ctx context.Context, m *domain.Message) error

	// DeleteByID 永久删除消息。记录不存在时返回 ErrMessageNotFound。
	DeleteByID(ctx context.Context, id uint) error
}
