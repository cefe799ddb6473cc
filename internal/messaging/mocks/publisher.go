package mocks

import (
	"context"

	"talescapes-server/internal/messaging"

	"github.com/stretchr/testify/mock"
)

// Mock StoryEventPublisher
type StoryEventPublisher struct {
	mock.Mock
}

func (m *StoryEventPublisher) PublishStoryEvent(ctx context.Context, event messaging.StoryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
