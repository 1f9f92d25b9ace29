// Package kafka provides an audit sink that produces records to a Kafka topic
// and waits for broker acknowledgement before returning.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/sentinel"
)

var _ audit.Sink = (*Sink)(nil)

// Config configures a Kafka sink.
type Config struct {
	Brokers []string
	Topic   string
	// Partitions and ReplicationFactor are used by EnsureTopic.
	Partitions        int32
	ReplicationFactor int16
}

// Sink produces each record synchronously with all-ISR acks, so Append
// returning nil means the record is durable in the cluster.
type Sink struct {
	client *kgo.Client
	topic  string
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a Kafka sink. The client is owned by the sink and closed by Close.
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one Kafka broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression(), kgo.NoCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: cfg.Topic, cfg: cfg, logger: logger}, nil
}

// EnsureTopic creates the audit topic if it does not exist.
func (s *Sink) EnsureTopic(ctx context.Context) error {
	partitions := s.cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	replication := s.cfg.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}

	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic %s: %w", s.topic, resp.Err)
	}
	return nil
}

// Append produces the record keyed by request ID, keeping one request's
// records on one partition and therefore in order.
func (s *Sink) Append(ctx context.Context, record audit.Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return sentinel.ErrClosed
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	key := record.RequestID
	if key == "" {
		key = record.ID
	}

	kr := &kgo.Record{
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(record.Action)},
			{Key: "status", Value: []byte(record.Status)},
		},
	}
	if err := s.client.ProduceSync(ctx, kr).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.client.Flush(context.Background()); err != nil {
		s.logger.Warn("kafka audit sink flush failed", "error", err)
	}
	s.client.Close()
	return nil
}

func (s *Sink) Name() string { return "kafka" }

// Ping checks that a seed broker answers.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
