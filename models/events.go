package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published to Kafka, SNS and SQS after an order transaction commits.
type OrderEvent struct {
	EventType      string           `json:"event_type"`
	OrderID        string           `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	UserID         string           `json:"user_id,omitempty"`
	Status         OrderStatus      `json:"status"`
	PreviousStatus OrderStatus      `json:"previous_status,omitempty"`
	PaymentStatus  PaymentStatus    `json:"payment_status"`
	PaymentMethod  PaymentMethod    `json:"payment_method,omitempty"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	Items          []OrderEventItem `json:"items,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type OrderEventItem struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderEvent builds an event snapshot of the given order.
func NewOrderEvent(eventType string, order *Order) OrderEvent {
	evt := OrderEvent{
		EventType:     eventType,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
	if order.UserID != nil {
		evt.UserID = order.UserID.String()
	}
	for _, item := range order.OrderItems {
		evt.Items = append(evt.Items, OrderEventItem{
			ProductID: item.ProductID.String(),
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return evt
}
