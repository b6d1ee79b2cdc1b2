package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// Publisher sends serialized events to a bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// PublishChange serializes a change event and publishes it under its routing key.
func PublishChange(ctx context.Context, p Publisher, event domain.EntityChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EntityType, err)
	}
	return p.Publish(ctx, event.RoutingKey(), payload)
}
