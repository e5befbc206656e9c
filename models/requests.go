package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserInput either references an existing user by ID or carries the fields
// needed to register a new one.
type UserInput struct {
	ID        *uuid.UUID     `json:"id"`
	Email     string         `json:"email" binding:"omitempty,email,max=255"`
	Password  string         `json:"password" binding:"omitempty,min=8,max=72"`
	FirstName string         `json:"first_name" binding:"max=100"`
	LastName  string         `json:"last_name" binding:"max=100"`
	Phone     string         `json:"phone" binding:"max=20"`
	Addresses []AddressInput `json:"addresses" binding:"omitempty,dive"`
}

// IsReference reports whether the user is identified by ID rather than registered inline.
func (u UserInput) IsReference() bool {
	return u.ID != nil
}

type AddressInput struct {
	Type          AddressType `json:"type" binding:"required,oneof=billing shipping"`
	FirstName     string      `json:"first_name" binding:"max=100"`
	LastName      string      `json:"last_name" binding:"max=100"`
	Company       string      `json:"company" binding:"max=100"`
	AddressLine1  string      `json:"address_line_1" binding:"required,max=255"`
	AddressLine2  string      `json:"address_line_2" binding:"max=255"`
	City          string      `json:"city" binding:"required,max=100"`
	StateProvince string      `json:"state_province" binding:"required,max=100"`
	PostalCode    string      `json:"postal_code" binding:"required,max=20"`
	Country       string      `json:"country" binding:"omitempty,len=2"`
	Phone         string      `json:"phone" binding:"max=20"`
	IsDefault     bool        `json:"is_default"`
}

// OrderItemInput accepts the catalog fields older clients send alongside the
// product reference; only ProductID and Quantity are used.
type OrderItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1,max=10000"`
	SKU       string           `json:"sku,omitempty"`
	Name      string           `json:"name,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	VariantID *uuid.UUID       `json:"variant_id,omitempty"`
}

type CreateOrderRequest struct {
	User                 UserInput        `json:"user"`
	Addresses            []AddressInput   `json:"addresses" binding:"omitempty,dive"`
	Items                []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddressIndex *int             `json:"shipping_address_index" binding:"required,min=0"`
	BillingAddressIndex  *int             `json:"billing_address_index" binding:"required,min=0"`
	PaymentMethod        PaymentMethod    `json:"payment_method"`
	Notes                string           `json:"notes" binding:"max=2000"`
}

// SubmittedAddresses returns the top-level address list, falling back to the
// list nested under the user.
func (r *CreateOrderRequest) SubmittedAddresses() []AddressInput {
	if len(r.Addresses) > 0 {
		return r.Addresses
	}
	return r.User.Addresses
}

type OrderConfirmation struct {
	OrderID           uuid.UUID       `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	UserID            uuid.UUID       `json:"user_id"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	ShippingAmount    decimal.Decimal `json:"shipping_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ItemsCount        int             `json:"items_count"`
	ShippingAddressID uuid.UUID       `json:"shipping_address_id"`
	BillingAddressID  uuid.UUID       `json:"billing_address_id"`
	CreatedAt         time.Time       `json:"created_at"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type OrderStatusResponse struct {
	OrderID       uuid.UUID     `json:"order_id"`
	OrderNumber   string        `json:"order_number"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required,max=255"`
	SKU      string          `json:"sku" binding:"required,max=100"`
	Price    decimal.Decimal `json:"price"`
	IsActive *bool           `json:"is_active"`
}

type OrderListResponse struct {
	Orders []Order  `json:"orders"`
	Meta   MetaData `json:"meta"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}
