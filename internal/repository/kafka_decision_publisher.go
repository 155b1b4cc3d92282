package repository

import (
	"context"

	"github.com/segmentio/kafka-go"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	pkgkafka "SignalAxis/pkg/kafka"
)

// KafkaDecisionPublisher publishes decision events keyed by decision key,
// so events of one axis stay ordered on one partition.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaDecisionPublisher(p *pkgkafka.Producer, topic string) *KafkaDecisionPublisher {
	return &KafkaDecisionPublisher{producer: p, topic: topic}
}

func (p *KafkaDecisionPublisher) PublishDecision(ctx context.Context, ev models.DecisionEvent) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(ev.Key),
		Value:   ev,
		Headers: []kafka.Header{pkgkafka.Header("event_type", ev.Type)},
	}})
}

func (p *KafkaDecisionPublisher) Close() error {
	return p.producer.Close()
}

// NoopDecisionPublisher drops events; used when no brokers are configured.
type NoopDecisionPublisher struct{}

func (NoopDecisionPublisher) PublishDecision(context.Context, models.DecisionEvent) error { return nil }
func (NoopDecisionPublisher) Close() error                                                { return nil }

var (
	_ domrepo.DecisionPublisher = (*KafkaDecisionPublisher)(nil)
	_ domrepo.DecisionPublisher = NoopDecisionPublisher{}
)
