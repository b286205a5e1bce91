package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/eta"
	"github.com/wakeroute/wakeroute/internal/history"
)

// Job types accepted on the worker subscription.
const (
	JobTypeTripOutcome  = "trip_outcome"
	JobTypeRouteRefresh = "route_refresh"
)

// JobMessage is the envelope for worker jobs published to Pub/Sub.
type JobMessage struct {
	JobType   string          `json:"job_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// TripOutcomePayload carries one observed trip for the history store.
// Devices publish these after the user arrives rather than calling the
// API synchronously.
type TripOutcomePayload struct {
	RouteKey         string `json:"route_key"`
	Mode             string `json:"mode"`
	PredictedMinutes int    `json:"predicted_minutes"`
	ActualMinutes    int    `json:"actual_minutes"`
}

// PubSubConfig holds configuration for the Pub/Sub consumer.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Logger           zerolog.Logger
	History          *history.Service
	RefreshJob       *RefreshJob
}

// PubSubConsumer receives job messages and dispatches them to the
// history store or the refresh job.
type PubSubConsumer struct {
	client     *pubsub.Client
	config     PubSubConfig
	logger     zerolog.Logger
	history    *history.Service
	refreshJob *RefreshJob
}

// NewPubSubConsumer creates a new Pub/Sub consumer.
func NewPubSubConsumer(ctx context.Context, cfg PubSubConfig) (*PubSubConsumer, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &PubSubConsumer{
		client:     client,
		config:     cfg,
		logger:     cfg.Logger,
		history:    cfg.History,
		refreshJob: cfg.RefreshJob,
	}, nil
}

// Start begins receiving messages. Blocks until the context is canceled
// or Receive returns an error.
func (c *PubSubConsumer) Start(ctx context.Context) error {
	sub := c.client.Subscriber(c.config.SubscriptionName)
	sub.ReceiveSettings.MaxOutstandingMessages = 10
	sub.ReceiveSettings.MaxExtension = 10 * time.Minute

	c.logger.Info().
		Str("subscription", c.config.SubscriptionName).
		Msg("starting pubsub consumer")

	err := sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.handleMessage(ctx, msg)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("pubsub receive failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *PubSubConsumer) Close() error {
	return c.client.Close()
}

func (c *PubSubConsumer) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var job JobMessage
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to parse job message")
		msg.Ack()
		return
	}

	log := c.logger.With().
		Str("message_id", msg.ID).
		Str("job_type", job.JobType).
		Logger()

	switch job.JobType {
	case JobTypeTripOutcome:
		if err := c.handleTripOutcome(ctx, job.Payload); err != nil {
			log.Error().Err(err).Msg("trip outcome job failed")
			msg.Nack()
			return
		}
		msg.Ack()

	case JobTypeRouteRefresh:
		result := c.refreshJob.Run(ctx)
		if result.TotalRoutes > 0 && result.Failed == result.TotalRoutes {
			log.Error().Int("failed", result.Failed).Msg("route refresh job failed for all routes")
			msg.Nack()
			return
		}
		log.Info().
			Int("successful", result.Successful).
			Int("failed", result.Failed).
			Msg("route refresh job completed")
		msg.Ack()

	default:
		log.Warn().Msg("unknown job type, acking to avoid redelivery")
		msg.Ack()
	}
}

func (c *PubSubConsumer) handleTripOutcome(ctx context.Context, payload json.RawMessage) error {
	var p TripOutcomePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("failed to parse trip outcome payload: %w", err)
	}
	if p.RouteKey == "" {
		return fmt.Errorf("trip outcome missing route key")
	}
	mode, err := eta.ParseMode(p.Mode)
	if err != nil {
		return err
	}

	rec, err := c.history.RecordOutcome(ctx, p.RouteKey, mode, p.PredictedMinutes, p.ActualMinutes)
	if err != nil {
		return fmt.Errorf("failed to record trip outcome: %w", err)
	}

	c.logger.Info().
		Str("route_key", p.RouteKey).
		Str("mode", p.Mode).
		Int("error_minutes", rec.Actual-rec.Predicted).
		Msg("trip outcome recorded")
	return nil
}
