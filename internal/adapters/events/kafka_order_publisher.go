package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spad0604/robot-delivery/internal/domain"
	"github.com/spad0604/robot-delivery/internal/platform/obs"
)

const EventOrderCreated = "order.created"

// KafkaWriter is the part of *kafka.Writer the publisher needs, so tests
// can capture messages without a broker.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvent is the message body published for every created order.
type OrderEvent struct {
	EventID    string        `json:"eventId"`
	Type       string        `json:"type"`
	OccurredAt string        `json:"occurredAt"`
	Order      *domain.Order `json:"order"`
}

// KafkaOrderPublisher implements OrderEventPublisher on a Kafka topic,
// keyed by order id.
type KafkaOrderPublisher struct {
	writer KafkaWriter
	topic  string
	log    *zap.Logger
	now    func() time.Time
}

func NewKafkaOrderPublisher(brokers []string, topic string, log *zap.Logger) (*KafkaOrderPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka publisher: topic is empty")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return NewKafkaOrderPublisherWithWriter(w, topic, log), nil
}

func NewKafkaOrderPublisherWithWriter(w KafkaWriter, topic string, log *zap.Logger) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{writer: w, topic: topic, log: log, now: time.Now}
}

func (p *KafkaOrderPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) (err error) {
	defer obs.Time(ctx, p.log, "events.PublishOrderCreated")(&err)

	if order == nil || order.ID == "" {
		return errors.New("publish order created: order has no id")
	}

	ev := OrderEvent{
		EventID:    uuid.NewString(),
		Type:       EventOrderCreated,
		OccurredAt: p.now().UTC().Format(time.RFC3339Nano),
		Order:      order,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("publish order created: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(EventOrderCreated)},
			{Key: "event-id", Value: []byte(ev.EventID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order created: write to topic %q: %w", p.topic, err)
	}

	p.log.Debug("published order event",
		zap.String("topic", p.topic),
		zap.String("order_id", order.ID),
		zap.String("event_id", ev.EventID))
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}
