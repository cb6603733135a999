package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	CartItemAddedEventName    = "CartItemAdded"
	CartItemAddedEventVersion = 1
	cartItemAddedSchema       = "contracts/events/cart/CartItemAdded.v1.enveloped.schema.json"
)

type EventEnvelope struct {
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CausationID   string    `json:"causationId,omitempty"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	Sequence      int64     `json:"sequence"`
	OccurredAt    time.Time `json:"occurredAt"`
	Schema        string    `json:"schema"`
}

type CartItemAddedPayload struct {
	SessionID     string    `json:"sessionId"`
	UserID        string    `json:"userId,omitempty"`
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Image         string    `json:"image"`
	SelectedColor *string   `json:"selectedColor,omitempty"`
	SelectedSize  *string   `json:"selectedSize,omitempty"`
	Quantity      int       `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
}

type CartItemAddedEvent struct {
	EventEnvelope
	Payload CartItemAddedPayload `json:"payload"`
}

type EventMeta struct {
	CorrelationID string
	CausationID   string
	PartitionKey  string
}

func newCartItemAddedEvent(meta EventMeta, seq int64, producer string, payload CartItemAddedPayload, occurredAt time.Time) CartItemAddedEvent {
	return CartItemAddedEvent{
		EventEnvelope: EventEnvelope{
			EventName:     CartItemAddedEventName,
			EventVersion:  CartItemAddedEventVersion,
			EventID:       uuid.NewString(),
			CorrelationID: meta.CorrelationID,
			CausationID:   meta.CausationID,
			Producer:      producer,
			PartitionKey:  meta.PartitionKey,
			Sequence:      seq,
			OccurredAt:    occurredAt,
			Schema:        cartItemAddedSchema,
		},
		Payload: payload,
	}
}
