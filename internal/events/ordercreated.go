package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/marketplace-system/checkout-service-go/internal/order"
)

const (
	orderCreatedEventName    = "OrderCreated"
	orderCreatedEventVersion = 1
	orderCreatedSchema       = "contracts/events/order/OrderCreated.v1.payload.schema.json"
)

// OrderLine mirrors an order item on the wire.
type OrderLine struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderCreatedPayload represents the v1 payload schema.
type OrderCreatedPayload struct {
	OrderID            string      `json:"orderId"`
	UserID             string      `json:"userId"`
	GroupTransactionID string      `json:"groupTransactionId,omitempty"`
	Items              []OrderLine `json:"items"`
	TotalAmount        float64     `json:"totalAmount"`
	PaymentStatus      string      `json:"paymentStatus"`
	Timestamp          time.Time   `json:"timestamp"`
}

// OrderCreatedEnvelope is the enveloped event structure.
type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

// BuildOrderCreatedEnvelope builds an enveloped OrderCreated event.
func BuildOrderCreatedEnvelope(o *order.Order, seq int64, meta EnvelopeMetadata) OrderCreatedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderLine{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return OrderCreatedEnvelope{
		EventName:     orderCreatedEventName,
		EventVersion:  orderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      "checkout-service",
		PartitionKey:  o.ID,
		Sequence:      &seq,
		OccurredAt:    time.Now().UTC(),
		Schema:        orderCreatedSchema,
		Payload: OrderCreatedPayload{
			OrderID:            o.ID,
			UserID:             o.UserID,
			GroupTransactionID: o.GroupTransactionID,
			Items:              items,
			TotalAmount:        o.TotalAmount,
			PaymentStatus:      string(o.PaymentStatus),
			Timestamp:          o.CreatedAt,
		},
	}
}
