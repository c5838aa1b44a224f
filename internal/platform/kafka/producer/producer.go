// Package producer publishes records to Kafka with franz-go.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"inkwell/internal/platform/config"
)

// ErrClosed is returned by Produce calls after Close.
var ErrClosed = errors.New("kafka producer is closed")

// Message represents a message to be published to Kafka.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

const defaultMaxBuffered = 10_000

// Producer wraps the franz-go client.
type Producer struct {
	client  *kgo.Client
	logger  *slog.Logger
	onDrop  func()
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
}

// Option configures a Producer.
type Option func(*Producer)

// WithDropHook is called once for every record ProduceAsync discards
// because the client buffer is full.
func WithDropHook(fn func()) Option {
	return func(p *Producer) {
		p.onDrop = fn
	}
}

// New creates a producer for cfg.Brokers. It does not contact the brokers.
func New(cfg config.KafkaConfig, logger *slog.Logger, opts ...Option) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}
	maxBuffered := cfg.MaxBufferedRecords
	if maxBuffered <= 0 {
		maxBuffered = defaultMaxBuffered
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.AuditTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(3),
		kgo.RecordDeliveryTimeout(30*time.Second),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.MaxBufferedRecords(maxBuffered),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	p := &Producer{client: client, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func toRecord(msg *Message) *kgo.Record {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return &kgo.Record{Topic: msg.Topic, Key: msg.Key, Value: msg.Value, Headers: headers}
}

func (p *Producer) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Produce sends a message and waits for the broker acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, toRecord(msg)).FirstErr(); err != nil {
		return fmt.Errorf("produce message: %w", err)
	}
	return nil
}

// ProduceAsync buffers a message for background delivery and never blocks:
// when the client buffer is full the record is dropped and counted.
// Delivery failures are logged.
func (p *Producer) ProduceAsync(msg *Message) error {
	if p.isClosed() {
		return ErrClosed
	}
	p.client.TryProduce(context.Background(), toRecord(msg), p.deliveryResult)
	return nil
}

func (p *Producer) deliveryResult(r *kgo.Record, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, kgo.ErrMaxBuffered) {
		p.dropped.Add(1)
		if p.onDrop != nil {
			p.onDrop()
		}
		return
	}
	p.logger.Error("kafka delivery failed",
		"topic", r.Topic,
		"partition", r.Partition,
		"error", err,
	)
}

// Dropped reports how many records were discarded on a full buffer.
func (p *Producer) Dropped() int64 {
	return p.dropped.Load()
}

// Ping checks broker connectivity, for readiness checks.
func (p *Producer) Ping(ctx context.Context) error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.client.Ping(ctx)
}

// Close flushes buffered records for up to timeout, then shuts down.
func (p *Producer) Close(timeout time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka producer closed with unflushed messages", "error", err)
	}
	p.client.Close()
}
