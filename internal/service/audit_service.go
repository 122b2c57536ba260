package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-admin/internal/events"
)

// AuditService writes an audit log line for every user-table mutation.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to all user events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserCreated, a.record)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.record)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.record)
	a.dispatcher.Subscribe(events.EventUsersImported, a.record)
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Any("payload", event.Payload),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}
