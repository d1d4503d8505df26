package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventBatchCreated  = "inventory.batch.created"
	EventBatchExpiring = "inventory.batch.expiring"
	EventScanSubmitted = "inventory.scan.submitted"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
)

// Queue names
const (
	QueueScanIngest = "inventory.scan-ingest"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// BatchCreatedEvent is published after an inventory batch is stored
type BatchCreatedEvent struct {
	BatchID        string    `json:"batch_id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductBarcode string    `json:"product_barcode"`
	CategoryName   string    `json:"category_name,omitempty"`
	Quantity       int       `json:"quantity"`
	ExpiryDate     time.Time `json:"expiry_date"`
	AddedBy        string    `json:"added_by"`
	ProductCreated bool      `json:"product_created"`
}

// BatchExpiringEvent is published when a batch is nearing expiry
type BatchExpiringEvent struct {
	BatchID        string    `json:"batch_id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	ProductBarcode string    `json:"product_barcode"`
	BatchNumber    string    `json:"batch_number,omitempty"`
	ExpiryDate     time.Time `json:"expiry_date"`
	DaysUntil      int       `json:"days_until"`
	Quantity       int       `json:"quantity"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.New().String()
}
