package events_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/cheftrack/cheftrack-backend/internal/inventory/domain"
	"github.com/cheftrack/cheftrack-backend/internal/inventory/events"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/messaging"
	"github.com/cheftrack/cheftrack-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleView() *domain.BatchView {
	userID := "user-1"
	batchNumber := "L-42"
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	return domain.NewBatchView(&domain.Batch{
		ID:          "batch-1",
		ProductID:   "product-1",
		Quantity:    4,
		ExpiryDate:  now.AddDate(0, 0, 3),
		BatchNumber: &batchNumber,
		AddedBy:     &userID,
	}, &domain.Product{ID: "product-1", Name: "Milk", Barcode: "0001"}, now)
}

func TestPublishBatchCreated(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewWithPublisher(mock, logger.Nop())

	p.PublishBatchCreated(context.Background(), sampleView(), "Dairy", true)

	published := mock.Published()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.EventBatchCreated, published[0].Type)

	data, ok := published[0].Payload.(messaging.BatchCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "batch-1", data.BatchID)
	assert.Equal(t, "Milk", data.ProductName)
	assert.Equal(t, "Dairy", data.CategoryName)
	assert.Equal(t, "user-1", data.AddedBy)
	assert.True(t, data.ProductCreated)
}

func TestPublishBatchExpiring(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := events.NewWithPublisher(mock, logger.Nop())

	require.NoError(t, p.PublishBatchExpiring(context.Background(), sampleView()))

	published := mock.Published()
	require.Len(t, published, 1)
	data, ok := published[0].Payload.(messaging.BatchExpiringEvent)
	require.True(t, ok)
	assert.Equal(t, 3, data.DaysUntil)
	assert.Equal(t, "L-42", data.BatchNumber)
	assert.Equal(t, "0001", data.ProductBarcode)
}

func TestPublishBatchExpiring_ReturnsTransportError(t *testing.T) {
	mock := testutil.NewMockPublisher()
	mock.Err = stderrors.New("channel closed")
	p := events.NewWithPublisher(mock, logger.Nop())

	assert.Error(t, p.PublishBatchExpiring(context.Background(), sampleView()))
}

func TestNilPublisherDropsEvents(t *testing.T) {
	var p *events.InventoryEventPublisher

	assert.NotPanics(t, func() {
		p.PublishBatchCreated(context.Background(), sampleView(), "Dairy", false)
	})
	assert.NoError(t, p.PublishBatchExpiring(context.Background(), sampleView()))
}
