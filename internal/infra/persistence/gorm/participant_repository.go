package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/repository"
)

// GormParticipantRepository 是 ParticipantRepository 接口的 GORM 实现
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository 创建 GormParticipantRepository 实例
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	if db == nil {
		panic("database connection cannot be nil for GormParticipantRepository")
	}
	return &GormParticipantRepository{db: db}
}

// Create 实现插入新参与者。
// 同名并发插入由 name 主键约束串行化：重复键 (MySQL 1062) 映射为
// repository.ErrDuplicateEntry，而不是先查再插。
func (r *GormParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create participant '%s': %w", p.Name, err)
	}
	return nil
}

// FindByName 实现根据名字查找参与者
func (r *GormParticipantRepository) FindByName(ctx context.Context, name string) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("gorm: find participant by name '%s': %w", name, err)
	}
	return &p, nil
}

// FindAll 实现获取全部参与者
func (r *GormParticipantRepository) FindAll(ctx context.Context) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.WithContext(ctx).Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find all participants: %w", err)
	}
	return participants, nil
}

// FindIdleBefore 实现查找空闲参与者
func (r *GormParticipantRepository) FindIdleBefore(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.WithContext(ctx).Where("last_activity < ?", cutoff).Find(&participants).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find idle participants before %s: %w", cutoff.Format(time.RFC3339Nano), err)
	}
	return participants, nil
}

// UpdateLastActivity 实现条件更新最后活跃时间。
// 单条 UPDATE ... WHERE name = ? 即检查加更新，通过 RowsAffected
// 区分 "不存在"，避免查询和写入之间的竞态窗口。
func (r *GormParticipantRepository) UpdateLastActivity(ctx context.Context, name string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Participant{}).
		Where("name = ?", name).
		Update("last_activity", at)
	if result.Error != nil {
		return fmt.Errorf("gorm: update last activity for '%s': %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrParticipantNotFound
	}
	return nil
}

// DeleteByName 实现删除参与者
func (r *GormParticipantRepository) DeleteByName(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.Participant{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete participant '%s': %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrParticipantNotFound
	}
	return nil
}
