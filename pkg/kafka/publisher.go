package kafka

import (
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/nuwanperera/corebank/internal/views"
	"github.com/nuwanperera/corebank/pkg/utils"
	"go.uber.org/zap"
)

// LedgerEventPublisher emits committed ledger mutations to downstream
// consumers (statements, notifications). Publishing is asynchronous and must
// never block or fail a ledger operation.
type LedgerEventPublisher interface {
	Publish(event views.LedgerEvent) error
	Close()
}

type publisher struct {
	logger   *zap.Logger
	producer *kafka.Producer
	topic    string
}

const producerCreateAttempts = 3

// NewLedgerEventPublisher creates a Kafka-backed publisher. Producer creation
// is retried with jittered backoff since brokers may still be starting.
func NewLedgerEventPublisher(logger *zap.Logger, brokers, topic string) (LedgerEventPublisher, error) {
	var p *kafka.Producer
	var err error
	for attempt := 1; attempt <= producerCreateAttempts; attempt++ {
		p, err = kafka.NewProducer(&kafka.ConfigMap{
			"bootstrap.servers":  brokers,
			"acks":               "all",  // Wait for all replicas
			"enable.idempotence": "true", // Ensure messages are not sent twice
			"retries":            "1",    // Built-in retry mechanism
		})
		if err == nil {
			break
		}
		delay := utils.CalculateExponentialBackoffWithJitter(attempt, time.Second, 30*time.Second)
		logger.Warn("kafka producer creation failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("kafka producer created successfully", zap.String("brokers", brokers))
	go handleDeliveryReports(logger, p) // Async error handling
	return &publisher{logger: logger, producer: p, topic: topic}, nil
}

func (k *publisher) Publish(event views.LedgerEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Key by user id so a user's events stay ordered within a partition.
	key := event.UserID[:]

	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   key,
		Value: msgBytes,
	}, nil)
}

func (k *publisher) Close() {
	k.producer.Close()
}

func handleDeliveryReports(logger *zap.Logger, p *kafka.Producer) {
	for e := range p.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logger.Error("failed to publish ledger event", zap.Error(ev.TopicPartition.Error))
			}
		}
	}
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(views.LedgerEvent) error { return nil }
func (NoopPublisher) Close()                          {}
