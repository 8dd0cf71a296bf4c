package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
)

// PubSubSink publishes audit events to a Pub/Sub topic. The worker
// consumes the topic and persists events, keeping audit I/O off the
// request path's critical collaborators.
type PubSubSink struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
}

// PubSubSinkConfig holds configuration for the Pub/Sub audit sink.
type PubSubSinkConfig struct {
	ProjectID string
	TopicName string
}

// NewPubSubSink creates a Pub/Sub-backed audit sink.
func NewPubSubSink(ctx context.Context, cfg PubSubSinkConfig) (*PubSubSink, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubSink{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
	}, nil
}

// Record publishes the event and waits for the server acknowledgement.
func (s *PubSubSink) Record(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}

	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": event.Type,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing audit event: %w", err)
	}
	return nil
}

// Close stops the publisher and releases the client.
func (s *PubSubSink) Close() error {
	s.publisher.Stop()
	return s.client.Close()
}

var _ Sink = (*PubSubSink)(nil)
