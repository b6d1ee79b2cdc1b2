package mvvm

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMessageDuration is how long a message stays visible.
const DefaultMessageDuration = 3 * time.Second

// Notifier accepts short-lived user-facing messages.
type Notifier interface {
	Notify(message string)
}

// Notifyf formats a message and sends it to n.
func Notifyf(n Notifier, format string, args ...any) {
	n.Notify(fmt.Sprintf(format, args...))
}

// Message is one queued notification.
type Message struct {
	Text      string
	PostedAt  time.Time
	ExpiresAt time.Time
}

// MessageQueue keeps messages for a display duration. Views poll Active
// for what to show; a one-shot front end drains everything with Drain.
type MessageQueue struct {
	mu       sync.Mutex
	duration time.Duration
	messages []Message
	now      func() time.Time
}

// NewMessageQueue creates a queue whose messages last duration. A
// non-positive duration means DefaultMessageDuration.
func NewMessageQueue(duration time.Duration) *MessageQueue {
	if duration <= 0 {
		duration = DefaultMessageDuration
	}
	return &MessageQueue{duration: duration, now: time.Now}
}

// Duration returns how long messages stay visible.
func (q *MessageQueue) Duration() time.Duration { return q.duration }

// Notify queues message.
func (q *MessageQueue) Notify(message string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.messages = append(q.messages, Message{
		Text:      message,
		PostedAt:  now,
		ExpiresAt: now.Add(q.duration),
	})
}

// Active returns the messages that have not expired, oldest first, and
// forgets the expired ones.
func (q *MessageQueue) Active() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.messages[:0]
	for _, m := range q.messages {
		if now.Before(m.ExpiresAt) {
			kept = append(kept, m)
		}
	}
	q.messages = kept
	return append([]Message(nil), kept...)
}

// Drain returns every queued message regardless of expiry and empties the queue.
func (q *MessageQueue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.messages
	q.messages = nil
	return out
}

// Len returns the number of queued messages, expired or not.
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
