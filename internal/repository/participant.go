package repository

import (
	"context"
	"time"

	"github.com/phebueno/back-chat-uol/internal/domain"
)

// ParticipantRepository 定义了参与者数据的存储和检索操作。
type ParticipantRepository interface {
	// Create 插入一条新的参与者记录。
	// 名字的唯一性由存储层的主键约束保证：并发的同名 Create
	// 必须恰好有一个成功，其余返回 ErrDuplicateEntry。
	Create(ctx context.Context, p *domain.Participant) error

	// FindByName 根据名字查找参与者。
	// 如果参与者不存在，返回 ErrParticipantNotFound。
	FindByName(ctx context.Context, name string) (*domain.Participant, error)

	// FindAll 返回当前所有参与者，顺序不作保证。
	FindAll(ctx context.Context) ([]domain.Participant, error)

	// FindIdleBefore 返回 lastActivity 早于 cutoff 的所有参与者。
	// 供清扫任务使用。
	FindIdleBefore(ctx context.Context, cutoff time.Time) ([]domain.Participant, error)

	// UpdateLastActivity 条件更新参与者的最后活跃时间。
	// 记录不存在时返回 ErrParticipantNotFound (依据 RowsAffected 判断，
	// 不做先查再改的两步操作)。
	UpdateLastActivity(ctx context.Context, name string, at time.Time) error

	// DeleteByName 删除参与者记录。记录不存在时返回 ErrParticipantNotFound。
	DeleteByName(ctx context.Context, name string) error
}
