package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/audit"
)

// PubSubHandler consumes the audit topic and persists events. It also
// accepts job messages, currently only on-demand token sweeps.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	sink             audit.Sink
	sweepJob         *SweepJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Sink             audit.Sink
	SweepJob         *SweepJob
	Logger           zerolog.Logger
}

// JobMessage represents an operational job request. Job messages carry
// no event_type attribute, distinguishing them from audit events.
type JobMessage struct {
	JobType string `json:"job_type"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		sink:             cfg.Sink,
		sweepJob:         cfg.SweepJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	// Audit events carry an event_type attribute set by the publisher.
	if eventType := msg.Attributes["event_type"]; eventType != "" {
		if err := h.handleAuditEvent(ctx, msg.Data); err != nil {
			logger.Error().Err(err).Str("event_type", eventType).Msg("failed to persist audit event")
			msg.Nack()
			return
		}
		logger.Info().
			Str("event_type", eventType).
			Dur("duration", time.Since(startTime)).
			Msg("audit event persisted")
		msg.Ack()
		return
	}

	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Data, &jobMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	switch jobMsg.JobType {
	case "token_sweep":
		result := h.sweepJob.Run(ctx)
		if result.Err != nil {
			msg.Nack()
			return
		}
		logger.Info().
			Int("removed", result.Removed).
			Dur("duration", time.Since(startTime)).
			Msg("on-demand token sweep completed")
	default:
		logger.Warn().Str("job_type", jobMsg.JobType).Msg("unknown job type")
		// Ack unknown messages to prevent redelivery
	}

	msg.Ack()
}

func (h *PubSubHandler) handleAuditEvent(ctx context.Context, data []byte) error {
	var event audit.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("decoding audit event: %w", err)
	}
	return h.sink.Record(ctx, event)
}
