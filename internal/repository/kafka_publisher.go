package repository

import (
	"context"

	"TradeTuner/internal/domain/models"
	domrepo "TradeTuner/internal/domain/repository"
	pkgkafka "TradeTuner/pkg/kafka"
)

// KafkaPublisher emits optimization decisions to a Kafka topic, keyed by
// pair so per-pair ordering is preserved.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka decision publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishDecision(ctx context.Context, res *models.OptimizationResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(res.Pair), res)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
