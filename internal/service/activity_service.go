package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/chirpy/internal/config"
	"github.com/spec-kit/chirpy/internal/events"
)

// ActivityService records user and chirp lifecycle events.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.ActivityConfig
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.ActivityConfig) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserCreated,
		events.EventUserUpdated,
		events.EventChirpCreated,
		events.EventChirpDeleted,
	} {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *ActivityService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID.String()),
		zap.String("actor_id", event.ActorID.String()))
	// Payloads can carry emails; keep them out of info logs.
	a.logger.Debug("event payload",
		zap.String("event_id", event.ID.String()),
		zap.Any("payload", event.Payload))
	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *ActivityService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
