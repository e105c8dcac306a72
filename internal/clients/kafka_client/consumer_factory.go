package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type ConsumerFunc func(context.Context, *kafka.Consumer)

var consumerRegistry = make(map[string]ConsumerFunc)

func RegisterConsumer(topic string, consumerFunc ConsumerFunc) {
	consumerRegistry[topic] = consumerFunc
}

func lookupConsumer(topic string) (ConsumerFunc, error) {
	consumerFunc, exists := consumerRegistry[topic]
	if !exists {
		return nil, fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", topic)
	}
	return consumerFunc, nil
}

// StartConsumer runs the consumer registered for cfg.Topic until ctx is done.
func StartConsumer(ctx context.Context, cfg KafkaConfig) error {
	consumerFunc, err := lookupConsumer(cfg.Topic)
	if err != nil {
		return err
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.Topic))
	consumerFunc(ctx, consumer)

	return nil
}
