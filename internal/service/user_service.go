package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/domain"
	"github.com/spec-kit/yuhuhero-service/internal/events"
	"github.com/spec-kit/yuhuhero-service/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// UserService serves profile reads and updates for authenticated callers.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// UpdateQuizStatus records whether the caller finished the onboarding quiz
// and returns the refreshed identity.
func (s *UserService) UpdateQuizStatus(ctx context.Context, caller domain.Identity, completed bool) (domain.Identity, error) {
	if err := s.users.UpdateQuizStatus(ctx, caller.ID, completed); err != nil {
		return domain.Identity{}, err
	}
	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return domain.Identity{}, err
	}

	if s.dispatcher != nil {
		event := events.NewEvent(events.EventQuizStatusChanged, caller.ID, events.QuizStatusChangedPayload{Completed: completed})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return user.Identity(), nil
}

// ListUsers returns a page of identities, newest first.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.Identity, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	identities := make([]domain.Identity, 0, len(users))
	for i := range users {
		identities = append(identities, users[i].Identity())
	}
	return identities, nil
}
