package service

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/domain"
	"github.com/phebueno/back-chat-uol/internal/repository"
)

// 消息展示时间的格式，追加时定格，之后不可变
const messageTimeLayout = "15:04:05"

// newStatusMessage 构造一条系统生成的 status 通知 (to 恒为 everyone)。
func newStatusMessage(from, text string) *domain.Message {
	return &domain.Message{
		From: from,
		To:   domain.Everyone,
		Text: text,
		Kind: domain.KindStatus,
		Time: time.Now().Format(messageTimeLayout),
	}
}

// MessageService 负责消息日志相关的业务逻辑：
// 发送、按可见性读取、编辑和删除。
type MessageService struct {
	messageRepo     repository.MessageRepository
	participantRepo repository.ParticipantRepository
}

// NewMessageService 创建 MessageService 实例。
func NewMessageService(messageRepo repository.MessageRepository, participantRepo repository.ParticipantRepository) *MessageService {
	if messageRepo == nil {
		panic("MessageRepository cannot be nil for MessageService")
	}
	if participantRepo == nil {
		panic("ParticipantRepository cannot be nil for MessageService")
	}
	return &MessageService{
		messageRepo:     messageRepo,
		participantRepo: participantRepo,
	}
}

// Post 处理参与者发送消息。
// 校验全部通过之前不产生任何写入：字段缺失或 kind 非法返回
// ErrInvalidMessage；from 不是当前参与者返回 ErrNotJoined。
// 成功时返回追加后的消息 (含分配的 ID 和定格的时间)。
func (s *MessageService) Post(ctx context.Context, from, to, text, kind string) (*domain.Message, error) {
	to = Sanitize(to)
	text = Sanitize(text)
	if from == "" || to == "" || text == "" || !domain.ValidKind(kind) {
		return nil, ErrInvalidMessage
	}
	logCtx := logrus.WithFields(logrus.Fields{"from": from, "kind": kind})

	if err := s.requireJoined(ctx, from); err != nil {
		return nil, err
	}

	m := &domain.Message{
		From: from,
		To:   to,
		Text: text,
		Kind: kind,
		Time: time.Now().Format(messageTimeLayout),
	}
	if err := s.messageRepo.Create(ctx, m); err != nil {
		logCtx.WithError(err).Error("Failed to append message")
		return nil, ErrInternalServer
	}
	logCtx.WithField("message_id", m.ID).Debug("Message appended")
	return m, nil
}

// ListVisible 返回 requester 可见的消息，保持日志顺序。
// limit > 0 时只保留最近的 limit 条可见消息 (顺序不变)；
// limit 为 0 是进程内"未指定"哨兵值，表示不截断——接口层
// 对显式传入的 limit=0 在进入这里之前就按 422 拒绝了；
// 负数返回 ErrInvalidLimit。
// limit 超过可见消息数时返回全部，不算错误。
func (s *MessageService) ListVisible(ctx context.Context, requester string, limit int) ([]domain.Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	all, err := s.messageRepo.FindAllOrdered(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load message log")
		return nil, ErrInternalServer
	}

	// 可见性是读取时逐条求值的谓词，不是存储属性
	visible := lo.Filter(all, func(m domain.Message, _ int) bool {
		return m.VisibleTo(requester)
	})

	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

// Edit 原地替换消息的 to/text/kind，from、id 和 time 保持不变。
// 消息不存在返回 ErrMessageNotFound；requester 不是原作者返回
// ErrNotOwner；requester 已不在聊天室返回 ErrNotJoined；
// 字段校验规则与 Post 相同。所有校验通过前不产生写入。
func (s *MessageService) Edit(ctx context.Context, id uint, requester, to, text, kind string) (*domain.Message, error) {
	existing, err := s.findMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.From != requester {
		return nil, ErrNotOwner
	}
	if err := s.requireJoined(ctx, requester); err != nil {
		return nil, err
	}

	to = Sanitize(to)
	text = Sanitize(text)
	if to == "" || text == "" || !domain.ValidKind(kind) {
		return nil, ErrInvalidMessage
	}

	existing.To = to
	existing.Text = text
	existing.Kind = kind
	if err := s.messageRepo.Update(ctx, existing); err != nil {
		logrus.WithError(err).WithField("message_id", id).Error("Failed to update message")
		return nil, ErrInternalServer
	}
	return existing, nil
}

// Delete 永久删除消息。
// 消息不存在返回 ErrMessageNotFound；requester 不是原作者返回 ErrNotOwner。
func (s *MessageService) Delete(ctx context.Context, id uint, requester string) error {
	existing, err := s.findMessage(ctx, id)
	if err != nil {
		return err
	}
	if existing.From != requester {
		return ErrNotOwner
	}

	if err := s.messageRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			// 查到之后被并发删掉了，对调用方等价于不存在
			return ErrMessageNotFound
		}
		logrus.WithError(err).WithField("message_id", id).Error("Failed to delete message")
		return ErrInternalServer
	}
	return nil
}

// findMessage 查找消息并映射仓库错误
func (s *MessageService) findMessage(ctx context.Context, id uint) (*domain.Message, error) {
	m, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return nil, ErrMessageNotFound
		}
		logrus.WithError(err).WithField("message_id", id).Error("Failed to find message")
		return nil, ErrInternalServer
	}
	return m, nil
}

// requireJoined 校验 name 是当前在场的参与者
func (s *MessageService) requireJoined(ctx context.Context, name string) error {
	_, err := s.participantRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return ErrNotJoined
		}
		logrus.WithError(err).WithField("participant", name).Error("Failed to verify sender presence")
		return ErrInternalServer
	}
	return nil
}
