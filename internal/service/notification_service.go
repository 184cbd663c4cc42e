package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/config"
	"github.com/spec-kit/reimbursement-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events. Each handler is passed through wrap
// when it is non-nil, which lets a worker move delivery off the request path.
func (n *NotificationService) RegisterHandlers(wrap func(events.EventHandler) events.EventHandler) {
	if n.dispatcher == nil {
		return
	}
	if wrap == nil {
		wrap = func(h events.EventHandler) events.EventHandler { return h }
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, wrap(n.handleTicketCreated))
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, wrap(n.handleTicketStatusChanged))
	n.dispatcher.Subscribe(events.EventUserSuspensionChanged, wrap(n.handleUserSuspensionChanged))
}

// employers review new claims
func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// purchasers hear about decisions on their claims
func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.Int64("ticket_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserSuspensionChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("UserSuspensionChanged", zap.Int64("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
