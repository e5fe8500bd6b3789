// Package kafka produces pass-update events to the topic the push-delivery
// system consumes.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"campuspass/internal/events"
)

// Producer publishes events to a Kafka topic, keyed by serial number so all
// updates for one pass land in the same partition in order.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the brokers and returns a ready producer.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// Append implements events.Sink.
func (p *Producer) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Serial.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close flushes buffered records and tears down the client.
func (p *Producer) Close() {
	p.client.Close()
}
