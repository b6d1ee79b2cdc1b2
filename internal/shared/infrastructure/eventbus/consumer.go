package eventbus

import (
	"context"
	"strings"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// EventConsumer handles change events.
type EventConsumer interface {
	// EventTypes returns the topic patterns this consumer handles, e.g.
	// "inventory.article.*" or "inventory.#".
	EventTypes() []string

	Handle(ctx context.Context, event *domain.EntityChanged) error
}

// ConsumerFunc adapts a function to EventConsumer.
type ConsumerFunc struct {
	Patterns []string
	Fn       func(ctx context.Context, event *domain.EntityChanged) error
}

func (c ConsumerFunc) EventTypes() []string { return c.Patterns }

func (c ConsumerFunc) Handle(ctx context.Context, event *domain.EntityChanged) error {
	return c.Fn(ctx, event)
}

// Consumer receives events from a broker.
type Consumer interface {
	// Start blocks until ctx is cancelled or Close is called.
	Start(ctx context.Context) error
	RegisterConsumer(consumer EventConsumer)
	Close() error
}

// MatchTopic reports whether key matches an AMQP topic pattern where "*"
// matches one word and "#" matches zero or more words.
func MatchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
