// Package kafka publishes order lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher is what the order service emits events through.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event models.OrderEvent) error
	PublishOrderStatus(ctx context.Context, event models.OrderEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Topics names the destination of each event type.
type Topics struct {
	OrderCreated string
	OrderStatus  string
}

// publishTimeout bounds one publish so an unreachable broker cannot stall order handling.
const publishTimeout = 3 * time.Second

type Producer struct {
	Writer  messageWriter
	Topics  Topics
	Logger  *logger.Logger
	Timeout time.Duration
}

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	if log == nil {
		log = logger.Discard()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  2,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{DialTimeout: 2 * time.Second},
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log, Timeout: publishTimeout}
}

// PublishOrderCreated streams the order creation event, keyed by order id
func (p *Producer) PublishOrderCreated(ctx context.Context, event models.OrderEvent) error {
	event.Type = models.EventOrderCreated
	return p.publish(ctx, p.Topics.OrderCreated, event)
}

// PublishOrderStatus streams a status change, keyed by order id
func (p *Producer) PublishOrderStatus(ctx context.Context, event models.OrderEvent) error {
	event.Type = models.EventOrderStatus
	return p.publish(ctx, p.Topics.OrderStatus, event)
}

func (p *Producer) publish(ctx context.Context, topic string, event models.OrderEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: msgBytes,
	})
	if err != nil {
		p.Logger.LogKafka("PUBLISH_FAILED", topic, fmt.Sprintf("Order #%d: %v", event.OrderID, err))
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.Logger.LogKafka("PUBLISHED", topic, fmt.Sprintf("Order #%d %s (%s)", event.OrderID, event.Type, event.Status))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher drops events when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, models.OrderEvent) error { return nil }
func (NoopPublisher) PublishOrderStatus(context.Context, models.OrderEvent) error  { return nil }
func (NoopPublisher) Close() error                                                 { return nil }
