package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StoryEventPublisher defines the interface for publishing story lifecycle
// events.
type StoryEventPublisher interface {
	PublishStoryEvent(ctx context.Context, event StoryEvent) error
}

// rabbitMQEventPublisher implements StoryEventPublisher over RabbitMQ.
type rabbitMQEventPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQEventPublisher opens a channel on the given connection and
// declares the durable story events queue. Queue parameters must match the
// consumer side.
func NewRabbitMQEventPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (StoryEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("event publisher: failed to declare queue '%s': %w", queueName, err)
	}

	return &rabbitMQEventPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("StoryEventPublisher"),
	}, nil
}

// PublishStoryEvent sends the event as a persistent JSON message.
func (p *rabbitMQEventPublisher) PublishStoryEvent(ctx context.Context, event StoryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("event publisher: failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(pubCtx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish story event",
			zap.String("type", event.Type),
			zap.Stringer("storyID", event.StoryID),
			zap.Error(err),
		)
		return fmt.Errorf("event publisher: failed to publish: %w", err)
	}

	p.logger.Debug("Story event published",
		zap.String("type", event.Type),
		zap.Stringer("storyID", event.StoryID),
	)
	return nil
}
