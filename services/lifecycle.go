package services

import (
	"order-intake-service/models"
)

var allowedTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusRefunded},
}

// CanTransition reports whether an order may move from one status to another.
// Cancelled and refunded are terminal.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// initialPaymentStatus maps a payment method to the payment_status a new order
// starts with. Cards and wallets are authorised at checkout and start out
// processing; offline methods wait for funds.
func initialPaymentStatus(method models.PaymentMethod) (models.PaymentStatus, bool) {
	switch method {
	case models.PaymentMethodCreditCard, models.PaymentMethodDebitCard, models.PaymentMethodPayPal:
		return models.PaymentStatusProcessing, true
	case models.PaymentMethodBankTransfer, models.PaymentMethodCashOnDelivery:
		return models.PaymentStatusPending, true
	default:
		return "", false
	}
}
