// Package kafka streams committed ledger entries to a Kafka topic so other
// systems (dashboards, parking billing) can follow gate activity without
// polling the API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	ledgermodels "gatepass/internal/ledger/models"
)

// Publisher produces one record per committed transaction, keyed by plate so
// per-vehicle ordering is preserved within a partition.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers. Returns nil if no brokers are
// configured; a nil Publisher is a valid no-op.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

type entryEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	PlateNumber  string    `json:"plate_number"`
	Driver       string    `json:"driver"`
	Action       string    `json:"action"`
	Gate         string    `json:"gate"`
	Remarks      string    `json:"remarks,omitempty"`
	LoggedBy     string    `json:"logged_by"`
	AccessStatus string    `json:"access_status"`
}

// Publish produces the entry asynchronously. Delivery failures are logged by
// the callback; the gate flow never waits on the broker.
func (p *Publisher) Publish(ctx context.Context, e ledgermodels.Entry) error {
	payload, err := json.Marshal(entryEvent{
		ID:           e.ID,
		Timestamp:    e.Timestamp,
		PlateNumber:  e.PlateNumber,
		Driver:       e.Driver,
		Action:       e.Action.String(),
		Gate:         e.Gate,
		Remarks:      e.Remarks,
		LoggedBy:     e.LoggedBy,
		AccessStatus: e.AccessStatus,
	})
	if err != nil {
		return fmt.Errorf("marshal ledger event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.PlateNumber),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("ledger event delivery failed",
				"entry_id", e.ID, "topic", p.topic, "error", err)
		}
	})
	return nil
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("kafka flush: %w", err)
	}
	p.client.Close()
	return nil
}
