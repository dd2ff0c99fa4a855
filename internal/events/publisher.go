// Package events publishes completed-hand notifications to Kafka so
// downstream consumers (analytics loaders, client-facing history feeds)
// can pick up finished hands without coupling to the Table Transaction
// Gateway.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"poker-platform/internal/engine"
)

// PublisherConfig holds Kafka producer configuration.
type PublisherConfig struct {
	Brokers        []string
	Topic          string
	MaxRetries     int
	RetryBackoff   time.Duration
	FlushFrequency time.Duration
	FlushMessages  int
	RequiredAcks   sarama.RequiredAcks
}

// HandCompletedEvent is the wire message published once a hand resolves.
type HandCompletedEvent struct {
	TableID     string           `json:"table_id"`
	HandNumber  int              `json:"hand_number"`
	Uncontested bool             `json:"uncontested"`
	Payouts     map[string]int64 `json:"payouts"`
	Timestamp   time.Time        `json:"timestamp"`
}

// HandPublisher publishes HandCompletedEvent messages to Kafka.
type HandPublisher struct {
	producer sarama.SyncProducer
	topic    string
	mu       sync.RWMutex
	stats    PublisherStats
}

// PublisherStats tracks basic producer health, readable through
// HandPublisher.Stats; it is not exported as a Prometheus metric.
type PublisherStats struct {
	MessagesSent   int64
	MessagesFailed int64
	LastSentAt     time.Time
}

// NewHandPublisher creates a new Kafka-backed hand publisher.
func NewHandPublisher(config PublisherConfig) (*HandPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Flush.Frequency = config.FlushFrequency
	saramaConfig.Producer.Flush.Messages = config.FlushMessages
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks

	if config.RequiredAcks == sarama.WaitForAll {
		saramaConfig.Producer.Idempotent = true
		saramaConfig.Net.MaxOpenRequests = 1
	}

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &HandPublisher{producer: producer, topic: config.Topic}, nil
}

// PublishHandResult flattens an engine.HandResult into the wire event and
// sends it, keyed by table ID so all of a table's hands land on the same
// partition and preserve order for a given consumer.
func (p *HandPublisher) PublishHandResult(ctx context.Context, tableID string, result *engine.HandResult) error {
	event := HandCompletedEvent{
		TableID:     tableID,
		HandNumber:  result.HandNumber,
		Uncontested: result.Uncontested,
		Payouts:     result.Payouts,
		Timestamp:   time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal hand completed event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(tableID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("table_id"), Value: []byte(tableID)},
		},
		Timestamp: event.Timestamp,
	}

	_, _, err = p.producer.SendMessage(msg)

	p.mu.Lock()
	if err != nil {
		p.stats.MessagesFailed++
	} else {
		p.stats.MessagesSent++
		p.stats.LastSentAt = time.Now()
	}
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("send hand completed event: %w", err)
	}
	return nil
}

// Stats returns a snapshot of producer counters.
func (p *HandPublisher) Stats() PublisherStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// Close shuts down the underlying producer.
func (p *HandPublisher) Close() error {
	return p.producer.Close()
}

// EnsureTopic creates the hand-completed topic if it doesn't already exist.
func EnsureTopic(brokers []string, topic string, partitions int32, replicationFactor int16) error {
	config := sarama.NewConfig()
	config.Version = sarama.V2_0_0_0

	admin, err := sarama.NewClusterAdmin(brokers, config)
	if err != nil {
		return fmt.Errorf("create cluster admin: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopic(topic, &sarama.TopicDetail{
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}, false)
	if err != nil {
		if topicErr, ok := err.(*sarama.TopicError); ok && topicErr.Err == sarama.ErrTopicAlreadyExists {
			return nil
		}
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}
