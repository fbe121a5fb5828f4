package repository

import (
	"context"

	"OilSim/internal/domain/models"
	"OilSim/internal/domain/repository"
	pkgkafka "OilSim/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Results are keyed by player
// so one player's sessions land on the same partition in order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishResult(ctx context.Context, r *models.SessionResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Player), r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
