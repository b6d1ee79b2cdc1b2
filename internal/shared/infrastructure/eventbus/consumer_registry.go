package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

type registration struct {
	consumer EventConsumer
	patterns []string
}

// ConsumerRegistry keeps consumers with their topic patterns and dispatches
// events to them in registration order.
type ConsumerRegistry struct {
	entries []registration
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{logger: logger}
}

// Register adds a consumer for its declared patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	patterns := consumer.EventTypes()
	r.entries = append(r.entries, registration{consumer: consumer, patterns: patterns})
	r.logger.Debug("registered consumer", "patterns", patterns)
}

// Matching returns the consumers with at least one pattern matching routingKey.
func (r *ConsumerRegistry) Matching(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	for _, e := range r.entries {
		for _, p := range e.patterns {
			if MatchTopic(p, routingKey) {
				out = append(out, e.consumer)
				break
			}
		}
	}
	return out
}

// Patterns returns every registered pattern without duplicates.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var patterns []string
	for _, e := range r.entries {
		for _, p := range e.patterns {
			if !seen[p] {
				seen[p] = true
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

// Dispatch delivers the event to every matching consumer. A failing consumer
// does not stop delivery to the others; all failures are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *domain.EntityChanged) error {
	key := event.RoutingKey()
	consumers := r.Matching(key)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for event", "routing_key", key)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", key,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConsumerCount returns the number of registered consumers.
func (r *ConsumerRegistry) ConsumerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
