// Package mocks 提供仓库接口的 testify mock 实现，仅供测试使用。
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/phebueno/back-chat-uol/internal/domain"
)

// ParticipantRepository 是 repository.ParticipantRepository 的 mock
type ParticipantRepository struct {
	mock.Mock
}

func (m *ParticipantRepository) Create(ctx context.Context, p *domain.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ParticipantRepository) FindByName(ctx context.Context, name string) (*domain.Participant, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}

func (m *ParticipantRepository) FindAll(ctx context.Context) ([]domain.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Participant), args.Error(1)
}

func (m *ParticipantRepository) FindIdleBefore(ctx context.Context, cutoff time.Time) ([]domain.Participant, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Participant), args.Error(1)
}

func (m *ParticipantRepository) UpdateLastActivity(ctx context.Context, name string, at time.Time) error {
	args := m.Called(ctx, name, at)
	return args.Error(0)
}

func (m *ParticipantRepository) DeleteByName(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
