package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"course-payments/pkg/logger"
)

const connectAttempts = 5

// Producer publishes JSON events to a single Kafka topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects with retries; brokers are often still starting next to the service.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	var producer sarama.SyncProducer
	var err error

	for i := 1; i <= connectAttempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			logger.Info("kafka producer initialized", map[string]interface{}{
				"brokers": brokers,
				"topic":   topic,
			})
			return NewProducerWith(producer, topic), nil
		}

		logger.Warn("waiting for kafka", map[string]interface{}{
			"attempt": i,
			"error":   err.Error(),
		})
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("failed to start kafka producer: %w", err)
}

// NewProducerWith wraps an existing SyncProducer.
func NewProducerWith(producer sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: producer, topic: topic}
}

// Publish sends event keyed by key, so events of one payment keep their order.
func (p *Producer) Publish(ctx context.Context, key string, event interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send kafka message to %s: %w", p.topic, err)
	}

	logger.Debug("event published", map[string]interface{}{
		"topic":     p.topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
