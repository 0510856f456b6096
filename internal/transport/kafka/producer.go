package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/IBM/sarama"

	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/service/order"
)

// Producer publishes order events to Kafka
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
}

// NewProducer creates a new Kafka producer. It returns nil when no brokers are configured.
func NewProducer(brokers []string, topic string, logger logx.Logger) (*Producer, error) {
	// не стартую если у кафки нет настроек
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newProducer(p, topic, logger), nil
}

func newProducer(p sarama.SyncProducer, topic string, logger logx.Logger) *Producer {
	return &Producer{
		producer: p,
		topic:    topic,
		logger:   logger.With(logx.String("component", "kafka-producer")),
	}
}

// Publish sends e keyed by order id.
func (p *Producer) Publish(_ context.Context, e order.Event) error {
	value, err := json.Marshal(FromDomain(e))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	key := strconv.FormatInt(e.OrderID, 10)
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: e.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send order event: %w", err)
	}

	p.logger.Debug("order event sent",
		logx.String("topic", p.topic),
		logx.String("key", key),
		logx.Any("partition", partition),
		logx.Int64("offset", offset),
	)
	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
