package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/phebueno/back-chat-uol/internal/service"
)

// sweepTimeout 限制单次清扫的持久化调用总时长，避免任务卡死
const sweepTimeout = 10 * time.Second

// PresenceSweepHandler 处理周期性的空闲参与者清扫任务
type PresenceSweepHandler struct {
	presenceService *service.PresenceService
	idleThreshold   time.Duration
}

// NewPresenceSweepHandler 创建 Handler 实例
func NewPresenceSweepHandler(presenceService *service.PresenceService, idleThreshold time.Duration) *PresenceSweepHandler {
	if presenceService == nil {
		panic("PresenceService cannot be nil for PresenceSweepHandler")
	}
	if idleThreshold <= 0 {
		panic("idleThreshold must be positive for PresenceSweepHandler")
	}
	return &PresenceSweepHandler{
		presenceService: presenceService,
		idleThreshold:   idleThreshold,
	}
}

// ProcessTask 实现 asynq.Handler 接口。
// cutoff 在执行时刻计算；清扫失败只记日志并返回 nil，
// 不触发 asynq 重试——下一个调度周期本身就是重试。
func (h *PresenceSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	cutoff := time.Now().Add(-h.idleThreshold)
	evicted, err := h.presenceService.EvictIdle(sweepCtx, cutoff)
	if err != nil {
		logCtx.WithError(err).Error("Presence sweep failed; will retry on the next tick")
		return nil
	}

	if len(evicted) > 0 {
		logCtx.WithField("evicted", evicted).Infof("Presence sweep evicted %d idle participant(s)", len(evicted))
	} else {
		logCtx.Debug("Presence sweep complete, nobody idle")
	}
	return nil
}
