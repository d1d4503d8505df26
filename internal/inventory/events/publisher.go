package events

import (
	"context"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/messaging"
)

// Publisher is the transport the inventory events go out on.
// *messaging.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// InventoryEventPublisher publishes inventory-related events.
// A nil publisher drops every event.
type InventoryEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates a new inventory event publisher
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}

	return NewWithPublisher(publisher, log), nil
}

// NewWithPublisher wraps an existing transport
func NewWithPublisher(p Publisher, log *logger.Logger) *InventoryEventPublisher {
	return &InventoryEventPublisher{
		publisher: p,
		logger:    log,
	}
}

// PublishBatchCreated publishes a batch created event
func (p *InventoryEventPublisher) PublishBatchCreated(ctx context.Context, view *domain.BatchView, categoryName string, productCreated bool) {
	if p == nil {
		return
	}

	addedBy := ""
	if view.AddedBy != nil {
		addedBy = *view.AddedBy
	}

	data := messaging.BatchCreatedEvent{
		BatchID:        view.ID,
		ProductID:      view.ProductID,
		ProductName:    view.ProductName,
		ProductBarcode: view.ProductBarcode,
		CategoryName:   categoryName,
		Quantity:       view.Quantity,
		ExpiryDate:     view.ExpiryDate,
		AddedBy:        addedBy,
		ProductCreated: productCreated,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchCreated, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", view.ID).Msg("failed to publish batch created event")
	}
}

// PublishBatchExpiring publishes a batch expiring event. The error is
// returned so the caller can count failures; it is already logged.
func (p *InventoryEventPublisher) PublishBatchExpiring(ctx context.Context, view *domain.BatchView) error {
	if p == nil {
		return nil
	}

	data := messaging.BatchExpiringEvent{
		BatchID:        view.ID,
		ProductID:      view.ProductID,
		ProductName:    view.ProductName,
		ProductBarcode: view.ProductBarcode,
		ExpiryDate:     view.ExpiryDate,
		Quantity:       view.Quantity,
	}
	if view.BatchNumber != nil {
		data.BatchNumber = *view.BatchNumber
	}
	if view.DaysUntilExpiry != nil {
		data.DaysUntil = *view.DaysUntilExpiry
	}

	if err := p.publisher.Publish(ctx, messaging.EventBatchExpiring, data); err != nil {
		p.logger.Error().Err(err).Str("batch_id", view.ID).Msg("failed to publish batch expiring event")
		return err
	}
	return nil
}
