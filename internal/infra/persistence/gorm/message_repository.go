package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/repository"
)

// GormMessageRepository 是 MessageRepository 接口的 GORM 实现
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository 创建 GormMessageRepository 实例
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMessageRepository")
	}
	return &GormMessageRepository{db: db}
}

// Create 实现追加消息，自增 ID 由 GORM 回填
func (r *GormMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("gorm: create message (from: %s, kind: %s): %w", m.From, m.Kind, err)
	}
	return nil
}

// FindByID 实现根据 ID 查找消息
func (r *GormMessageRepository) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMessageNotFound
		}
		return nil, fmt.Errorf("gorm: find message by id %d: %w", id, err)
	}
	return &m, nil
}

// FindAllOrdered 实现按插入顺序获取全部消息。
// 自增主键的顺序就是追加顺序，显式 ORDER BY id 保证时间线稳定。
func (r *GormMessageRepository) FindAllOrdered(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).Order("id ASC").Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find all messages: %w", err)
	}
	return messages, nil
}

// Update 实现保存消息修改
func (r *GormMessageRepository) Update(ctx context.Context, m *domain.Message) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("gorm: update message %d: %w", m.ID, err)
	}
	return nil
}

// DeleteByID 实现永久删除消息
func (r *GormMessageRepository) DeleteByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete message %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrMessageNotFound
	}
	return nil
}
