package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shopify/sarama"
	"github.com/cenkalti/backoff/v4"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
)

// DefaultMaxRetries bounds the publish attempts made for one relay pass.
const DefaultMaxRetries uint64 = 3

type Option func(*sarama.Config)

// NewKafkaSyncProducer creates a producer that waits for every write to be acknowledged.
func NewKafkaSyncProducer(brokers []string, opts ...Option) (sarama.SyncProducer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.Return.Errors = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Idempotent = true
	saramaCfg.Net.MaxOpenRequests = 1
	saramaCfg.Producer.Timeout = 2 * time.Second
	saramaCfg.Net.DialTimeout = 2 * time.Second
	saramaCfg.Net.ReadTimeout = 2 * time.Second
	saramaCfg.Net.WriteTimeout = 2 * time.Second

	for _, opt := range opts {
		opt(saramaCfg)
	}

	producer, err := sarama.NewSyncProducer(brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return producer, nil
}

// WithClientID sets the client id reported to the brokers.
func WithClientID(id string) Option {
	return func(cfg *sarama.Config) {
		cfg.ClientID = id
	}
}

// KafkaPublisher sends ledger events to a topic keyed by transaction ID, so the
// events of one transaction stay ordered within a partition.
type KafkaPublisher struct {
	producer   sarama.SyncProducer
	topic      string
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// NewKafkaPublisher wraps producer.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, maxRetries uint64) *KafkaPublisher {
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	return &KafkaPublisher{
		producer:   producer,
		topic:      topic,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			eb := backoff.NewExponentialBackOff()
			eb.InitialInterval = 200 * time.Millisecond
			eb.MaxElapsedTime = 10 * time.Second
			return eb
		},
	}
}

var _ portssvc.EventPublisher = (*KafkaPublisher)(nil)

// Publish sends event, retrying with exponential backoff. The final error is returned
// to the relay, which records it on the event.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AggregateID),
		Value: sarama.ByteEncoder(event.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
		},
		Timestamp: event.CreatedAt,
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	operation := func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Debug("Retrying ledger event publish",
			slog.String("event_id", event.EventID),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.EventID, p.topic, err)
	}

	logger.Debug("Ledger event published",
		slog.String("event_id", event.EventID),
		slog.String("event_type", string(event.EventType)),
		slog.String("topic", p.topic))
	return nil
}

// Close closes the underlying producer.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
