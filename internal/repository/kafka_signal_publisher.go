package repository

import (
	"context"
	"strings"

	"FinEdge/internal/domain/models"
	pkgkafka "FinEdge/pkg/kafka"
)

// KafkaSignalPublisher emits generated signals onto the event bus, keyed
// by symbol so consumers see per-symbol order.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, s models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(strings.ToUpper(s.Symbol)), s)
}

// NoopSignalPublisher is used when the event bus is disabled.
type NoopSignalPublisher struct{}

func (NoopSignalPublisher) PublishSignal(context.Context, models.Signal) error { return nil }
