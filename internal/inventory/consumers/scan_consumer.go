package consumers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/actor"
	"github.com/cheftrack/cheftrack-backend/pkg/errors"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/messaging"
)

// ScanSubmittedEvent is a scan queued by a device on behalf of a user
type ScanSubmittedEvent struct {
	UserID string `json:"user_id"`
	domain.IngestRequest
}

// Ingester runs the ingestion workflow
type Ingester interface {
	Ingest(ctx context.Context, req *domain.IngestRequest) (*domain.BatchView, error)
}

// ActorLookup resolves the user a scan was submitted for
type ActorLookup interface {
	ActorByID(ctx context.Context, id string) (*actor.Actor, error)
}

// ScanEventConsumer ingests scans delivered over RabbitMQ
type ScanEventConsumer struct {
	consumer *messaging.Consumer
	ingester Ingester
	users    ActorLookup
	logger   *logger.Logger
}

// NewScanEventConsumer creates a consumer bound to the scan queue
func NewScanEventConsumer(rmq *messaging.RabbitMQ, ingester Ingester, users ActorLookup, log *logger.Logger) (*ScanEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, messaging.QueueScanIngest, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeInventoryEvents, messaging.EventScanSubmitted); err != nil {
		return nil, err
	}

	c := NewScanHandler(ingester, users, log)
	c.consumer = consumer
	consumer.RegisterHandler(messaging.EventScanSubmitted, c.HandleScanSubmitted)

	return c, nil
}

// NewScanHandler creates the handler without a broker connection
func NewScanHandler(ingester Ingester, users ActorLookup, log *logger.Logger) *ScanEventConsumer {
	return &ScanEventConsumer{
		ingester: ingester,
		users:    users,
		logger:   log,
	}
}

// Start starts consuming messages
func (c *ScanEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// HandleScanSubmitted ingests one scan as the user named in the event.
// Failures a retry cannot fix (bad payload, unknown user, invalid scan)
// are marked permanent so the message is dead-lettered.
func (c *ScanEventConsumer) HandleScanSubmitted(ctx context.Context, event *messaging.Event) error {
	var data ScanSubmittedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return messaging.Permanent(fmt.Errorf("decode scan: %w", err))
	}
	if data.UserID == "" {
		return messaging.Permanent(errors.Unauthorized("scan has no user"))
	}

	a, err := c.users.ActorByID(ctx, data.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return messaging.Permanent(err)
		}
		return err
	}

	view, err := c.ingester.Ingest(actor.WithActor(ctx, a), &data.IngestRequest)
	if err != nil {
		if isClientError(err) {
			return messaging.Permanent(err)
		}
		return err
	}

	c.logger.Info().
		Str("event_id", event.ID).
		Str("user_id", a.ID).
		Str("batch_id", view.ID).
		Msg("scan ingested")
	return nil
}

func isClientError(err error) bool {
	var appErr *errors.AppError
	return errors.As(err, &appErr) && appErr.StatusCode >= http.StatusBadRequest && appErr.StatusCode < http.StatusInternalServerError
}
