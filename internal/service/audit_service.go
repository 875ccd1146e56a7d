package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/events"
)

// AuditService writes account events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleUserLoggedIn)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventQuizStatusChanged, a.handleQuizStatusChanged)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if p, ok := event.Payload.(events.UserRegisteredPayload); ok {
		fields = append(fields, zap.String("name", p.Name), zap.String("phone", p.Phone))
	}
	a.logger.Info("UserRegistered", fields...)
	return nil
}

func (a *AuditService) handleUserLoggedIn(_ context.Context, event events.Event) error {
	a.logger.Info("UserLoggedIn", eventFields(event)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if p, ok := event.Payload.(events.LoginFailedPayload); ok {
		fields = append(fields,
			zap.String("phone", p.Phone),
			zap.String("reason", p.Reason),
			zap.Int("failures", p.Failures))
	}
	a.logger.Warn("LoginFailed", fields...)
	return nil
}

func (a *AuditService) handleQuizStatusChanged(_ context.Context, event events.Event) error {
	a.logger.Info("QuizStatusChanged", append(eventFields(event), zap.Any("payload", event.Payload))...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Time("at", event.Timestamp),
	}
}
