// Package mirror streams security audit events to Kafka so downstream
// detection pipelines see them without polling the audit store.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inkwell/internal/platform/kafka/producer"
	audit "inkwell/pkg/platform/audit"
)

// Producer is the subset of the Kafka producer the mirror needs.
type Producer interface {
	ProduceAsync(msg *producer.Message) error
}

// KafkaMirror publishes each event as JSON keyed by source address so all
// events from one address land on the same partition.
type KafkaMirror struct {
	producer Producer
	topic    string
}

// NewKafka creates a mirror writing to topic. An empty topic uses the
// producer's default topic.
func NewKafka(p Producer, topic string) (*KafkaMirror, error) {
	if p == nil {
		return nil, errors.New("kafka producer is required")
	}
	return &KafkaMirror{producer: p, topic: topic}, nil
}

// Mirror enqueues the event for delivery. Delivery failures after enqueue
// are logged by the producer.
func (m *KafkaMirror) Mirror(_ context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	key := event.SourceAddress
	if key == "" {
		key = event.SubjectID
	}
	return m.producer.ProduceAsync(&producer.Message{
		Topic: m.topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"event_id": event.ID,
			"category": string(event.Category),
			"action":   event.Action,
		},
	})
}
