// Package kafka publishes audit events to a Kafka topic for deployments where
// the trail is consumed by a downstream compliance pipeline.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"quoteguard/pkg/platform/audit"
	"quoteguard/pkg/platform/sentinel"
)

// Publisher serializes events as JSON records keyed by owner id, so one
// owner's trail stays ordered within a partition.
type Publisher struct {
	client *kgo.Client
}

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client}, nil
}

type wireEvent struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	OwnerID   int64     `json:"owner_id,omitempty"`
	PublicID  string    `json:"public_id,omitempty"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(wireEvent{
		Category:  string(event.Category),
		Timestamp: event.Timestamp,
		OwnerID:   int64(event.OwnerID),
		PublicID:  event.PublicID,
		Action:    event.Action,
		Outcome:   event.Outcome,
		Reason:    event.Reason,
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Key:   []byte(event.OwnerID.String()),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("%w: produce audit event: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
