package events

import (
	"context"
	"time"
)

const (
	OrderPlacedName    = "OrderPlaced"
	OrderPlacedVersion = 1
	producer           = "grocery-pos"
)

// Envelope is the common wrapper of every published event.
type Envelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

type OrderPlacedLine struct {
	ProductID int    `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
}

// OrderPlaced is emitted after a checkout commits. Money amounts are decimal
// strings with two places.
type OrderPlaced struct {
	OrderID    int64             `json:"orderId"`
	CustomerID *int64            `json:"customerId,omitempty"`
	EmployeeID *int64            `json:"employeeId,omitempty"`
	Subtotal   string            `json:"subtotal"`
	Tax        string            `json:"tax"`
	Total      string            `json:"total"`
	Lines      []OrderPlacedLine `json:"lines"`
	PlacedAt   time.Time         `json:"placedAt"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
