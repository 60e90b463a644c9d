package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventChannel is the Redis channel mutation events are published on.
// Board clients subscribe to it to drive toast notifications.
const EventChannel = "crm.events"

// MutationEvent is the side-channel notification emitted after each
// successful mutation. It is advisory only; nothing in the engine reads
// it back.
type MutationEvent struct {
	Action   string    `json:"action"`
	Entity   string    `json:"entity"`
	EntityID uuid.UUID `json:"entity_id"`
	At       time.Time `json:"at"`
}

// Notifier publishes mutation events. Publishing is best-effort:
// implementations log failures and never return them to the caller.
type Notifier interface {
	Publish(ctx context.Context, event MutationEvent)
}

type redisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewNotifier creates a Redis-backed Notifier. A nil client yields a
// no-op notifier so the engine runs without Redis.
func NewNotifier(client *redis.Client, logger *zap.Logger) Notifier {
	if client == nil {
		return nopNotifier{}
	}
	return &redisNotifier{
		client: client,
		logger: logger.Named("notifier"),
	}
}

var _ Notifier = (*redisNotifier)(nil)

func (n *redisNotifier) Publish(ctx context.Context, event MutationEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to marshal mutation event", zap.Error(err))
		return
	}

	if err := n.client.Publish(ctx, EventChannel, payload).Err(); err != nil {
		n.logger.Warn("Failed to publish mutation event",
			zap.String("action", event.Action),
			zap.String("entity", event.Entity),
			zap.Error(err))
	}
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, MutationEvent) {}
