package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// InProcessEventBus is the local-mode bus used when no broker is configured.
// Events are delivered synchronously to registered consumers.
type InProcessEventBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the payload and dispatches it. Consumer failures are
// logged and never returned: the change has already been committed.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event := &domain.EntityChanged{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	return b.Dispatch(ctx, event)
}

// Dispatch delivers an already decoded event. Consumers may publish
// further events from Handle.
func (b *InProcessEventBus) Dispatch(ctx context.Context, event *domain.EntityChanged) error {
	start := time.Now()
	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Error("event dispatch failed",
			"routing_key", event.RoutingKey(),
			"event_id", event.EventID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil
	}

	b.logger.Debug("event dispatched",
		"routing_key", event.RoutingKey(),
		"event_id", event.EventID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}

// Registry returns the underlying consumer registry.
func (b *InProcessEventBus) Registry() *ConsumerRegistry {
	return b.registry
}

// FanoutPublisher publishes to several publishers, e.g. the local bus and a
// broker, so in-process view-models refresh while other instances are told too.
type FanoutPublisher struct {
	publishers []Publisher
	logger     *slog.Logger
}

// NewFanoutPublisher creates a publisher that forwards to all of ps.
func NewFanoutPublisher(logger *slog.Logger, ps ...Publisher) *FanoutPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FanoutPublisher{publishers: ps, logger: logger}
}

// Publish forwards to every publisher and returns the first failure.
func (f *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var first error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			f.logger.Warn("fanout publish failed", "routing_key", routingKey, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Close closes every publisher.
func (f *FanoutPublisher) Close() error {
	var first error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
