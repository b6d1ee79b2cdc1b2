package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/stockroom-app/stockroom/internal/shared/domain"
)

// consumerChannel is the part of *amqp.Channel the consumer uses.
type consumerChannel interface {
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitMQConsumer receives change events published by other instances.
type RabbitMQConsumer struct {
	conn      *amqp.Connection
	channel   consumerChannel
	queue     string
	exchange  string
	registry  *ConsumerRegistry
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	closeOnce sync.Once
	closeChan chan struct{}
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL string
	// QueueName names a durable queue. Empty declares an exclusive
	// server-named queue that lives as long as the connection.
	QueueName string
	Exchange  string
	Logger    *slog.Logger
}

// NewRabbitMQConsumer connects and declares the exchange and the queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, ch, err := dialExchange(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}

	durable := cfg.QueueName != ""
	q, err := ch.QueueDeclare(cfg.QueueName, durable, !durable, !durable, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected", "queue", q.Name, "exchange", cfg.Exchange)

	return &RabbitMQConsumer{
		conn:      conn,
		channel:   ch,
		queue:     q.Name,
		exchange:  cfg.Exchange,
		registry:  registry,
		logger:    cfg.Logger,
		closeChan: make(chan struct{}),
	}, nil
}

// RegisterConsumer registers consumer and binds its patterns to the queue.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	for _, pattern := range consumer.EventTypes() {
		if err := c.bind(pattern); err != nil {
			c.logger.Error("failed to bind queue", "pattern", pattern, "error", err)
		}
	}
}

func (c *RabbitMQConsumer) bind(pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.channel.QueueBind(c.queue, pattern, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.logger.Debug("bound queue", "queue", c.queue, "pattern", pattern)
	return nil
}

// Start consumes until ctx is cancelled or Close is called.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	msgs, err := c.consume()
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return err
	}

	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closeChan:
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed unexpectedly")
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *RabbitMQConsumer) consume() (<-chan amqp.Delivery, error) {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}
	return msgs, nil
}

func (c *RabbitMQConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	event := &domain.EntityChanged{}
	if err := json.Unmarshal(msg.Body, event); err != nil {
		// Malformed payloads are acked and dropped; redelivery cannot fix them.
		c.logger.Error("failed to unmarshal event", "routing_key", msg.RoutingKey, "error", err)
		_ = msg.Ack(false)
		return
	}

	if err := c.registry.Dispatch(ctx, event); err != nil {
		c.logger.Error("event dispatch failed", "routing_key", msg.RoutingKey, "event_id", event.EventID, "error", err)
		if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
	}
}

// Close stops Start and closes the connection.
func (c *RabbitMQConsumer) Close() error {
	c.closeOnce.Do(func() { close(c.closeChan) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}

	c.logger.Info("RabbitMQ consumer closed")
	return nil
}
