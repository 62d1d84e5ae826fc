package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/repository"
)

// 进出聊天室时由系统生成的 status 通知文案
const (
	statusTextJoined = "joined the room"
	statusTextLeft   = "left the room"
)

// PresenceService 负责参与者生命周期相关的业务逻辑：
// 加入、心跳、列表，以及空闲参与者的清出。
type PresenceService struct {
	participantRepo repository.ParticipantRepository
	messageRepo     repository.MessageRepository
}

// NewPresenceService 创建 PresenceService 实例。
func NewPresenceService(participantRepo repository.ParticipantRepository, messageRepo repository.MessageRepository) *PresenceService {
	if participantRepo == nil {
		panic("ParticipantRepository cannot be nil for PresenceService")
	}
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for PresenceService")
	}
	return &PresenceService{
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
	}
}

// Join 处理参与者加入聊天室。
// 名字清洗后为空返回 ErrInvalidName；重名返回 ErrNameTaken。
// 成功后向消息日志追加一条入场 status 通知 (from=name, to=everyone)。
func (s *PresenceService) Join(ctx context.Context, name string) (*domain.Participant, error) {
	name = Sanitize(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	logCtx := logrus.WithField("participant", name)

	participant := &domain.Participant{
		Name:         name,
		LastActivity: time.Now(),
	}

	// 唯一性依赖存储层的主键约束：并发同名 Join 恰好一个成功，
	// 其余在这里拿到 ErrDuplicateEntry，不做先查再插。
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			logCtx.Warn("Join rejected: name already taken")
			return nil, ErrNameTaken
		}
		logCtx.WithError(err).Error("Failed to save new participant")
		return nil, ErrInternalServer
	}

	// 先写参与者、后写通知：崩溃时不会出现"只有通知没有人"的幽灵。
	// 反向的缺口 (有人没通知) 是已记录的最终一致窗口，不回滚 Join。
	if err := s.appendStatus(ctx, name, statusTextJoined); err != nil {
		logCtx.WithError(err).Error("Participant created but arrival notice failed; timeline is missing a join status message")
	} else {
		logCtx.Info("Participant joined the room")
	}

	return participant, nil
}

// Heartbeat 刷新参与者的最后活跃时间。
// 名字为空或参与者不存在时返回 ErrParticipantNotFound，不产生任何消息。
func (s *PresenceService) Heartbeat(ctx context.Context, name string) error {
	if name == "" {
		return ErrParticipantNotFound
	}
	err := s.participantRepo.UpdateLastActivity(ctx, name, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		logrus.WithError(err).WithField("participant", name).Error("Failed to update participant activity")
		return ErrInternalServer
	}
	return nil
}

// List 返回当前所有参与者。
func (s *PresenceService) List(ctx context.Context) ([]domain.Participant, error) {
	participants, err := s.participantRepo.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list participants")
		return nil, ErrInternalServer
	}
	return participants, nil
}

// EvictIdle 清出 lastActivity 早于 cutoff 的所有参与者，
// 并为每个被清出者追加一条离场 status 通知。
// 单个参与者的失败只记日志不中断清扫，返回成功清出的名单。
// 与在途心跳的竞态按 last-writer-wins 处理：清扫读到空闲集合之后
// 落地的心跳可能仍被清出，属已知的最终一致缺口。
func (s *PresenceService) EvictIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	idle, err := s.participantRepo.FindIdleBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(idle) == 0 {
		return nil, nil
	}

	evicted := make([]string, 0, len(idle))
	for _, p := range idle {
		logCtx := logrus.WithField("participant", p.Name)

		if err := s.participantRepo.DeleteByName(ctx, p.Name); err != nil {
			if errors.Is(err, repository.ErrParticipantNotFound) {
				// 已被并发清掉，无需通知
				continue
			}
			logCtx.WithError(err).Error("Failed to evict idle participant")
			continue
		}

		// 删除后补发通知：失败时时间线缺一条离场消息，只能记录
		if err := s.appendStatus(ctx, p.Name, statusTextLeft); err != nil {
			logCtx.WithError(err).Error("Participant evicted but departure notice failed; timeline is missing a leave status message")
		}
		evicted = append(evicted, p.Name)
		logCtx.Info("Idle participant evicted")
	}
	return evicted, nil
}

// appendStatus 以系统路径追加 status 通知。
// 系统写入不经过"发送者必须在场"的校验：离场通知的 from
// 正是刚被删除的参与者。
func (s *PresenceService) appendStatus(ctx context.Context, from, text string) error {
	return s.messageRepo.Create(ctx, newStatusMessage(from, text))
}
