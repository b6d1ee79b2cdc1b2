package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ChangeKind describes what happened to a stored entity.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeRemoved  ChangeKind = "removed"
)

// EventMetadata contains tracing information for events.
type EventMetadata struct {
	CorrelationID string `json:"correlation_id,omitempty"`
	Username      string `json:"username,omitempty"`
}

// EntityChanged is published once per committed mutation.
type EntityChanged struct {
	EventID    uuid.UUID     `json:"event_id"`
	EntityType string        `json:"entity_type"`
	EntityID   int           `json:"entity_id"`
	Change     ChangeKind    `json:"change"`
	OccurredAt time.Time     `json:"occurred_at"`
	Metadata   EventMetadata `json:"metadata"`
}

// NewEntityChanged creates an event for the given entity.
func NewEntityChanged(e Entity, change ChangeKind) EntityChanged {
	return EntityChanged{
		EventID:    uuid.New(),
		EntityType: e.EntityName(),
		EntityID:   e.EntityID(),
		Change:     change,
		OccurredAt: time.Now().UTC(),
	}
}

// RoutingKey returns the topic key, e.g. "inventory.article_type.added".
func (e EntityChanged) RoutingKey() string {
	return RoutingKey(e.EntityType, e.Change)
}

// RoutingKey builds the topic key for an entity type and change.
func RoutingKey(entityType string, change ChangeKind) string {
	return fmt.Sprintf("inventory.%s.%s", snake(entityType), change)
}

func snake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
