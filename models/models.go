package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddressType string

const (
	AddressTypeBilling  AddressType = "billing"
	AddressTypeShipping AddressType = "shipping"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every lifecycle value accepted by the orders table.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard     PaymentMethod = "credit_card"
	PaymentMethodDebitCard      PaymentMethod = "debit_card"
	PaymentMethodPayPal         PaymentMethod = "paypal"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// User is a customer account. Addresses are removed with the user; orders are kept.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100)" json:"last_name"`
	Phone        string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	Addresses    []Address `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Address rows are unique per user on (type, line 1, city, state, postal code, country).
type Address struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_address_identity,priority:1" json:"user_id"`
	Type          AddressType `gorm:"type:varchar(20);not null;uniqueIndex:idx_address_identity,priority:2;check:chk_addresses_type,type IN ('billing','shipping')" json:"type"`
	FirstName     string      `gorm:"type:varchar(100)" json:"first_name,omitempty"`
	LastName      string      `gorm:"type:varchar(100)" json:"last_name,omitempty"`
	Company       string      `gorm:"type:varchar(100)" json:"company,omitempty"`
	AddressLine1  string      `gorm:"column:address_line_1;type:varchar(255);not null;uniqueIndex:idx_address_identity,priority:3" json:"address_line_1"`
	AddressLine2  string      `gorm:"column:address_line_2;type:varchar(255)" json:"address_line_2,omitempty"`
	City          string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_address_identity,priority:4" json:"city"`
	StateProvince string      `gorm:"type:varchar(100);not null;uniqueIndex:idx_address_identity,priority:5" json:"state_province"`
	PostalCode    string      `gorm:"type:varchar(20);not null;uniqueIndex:idx_address_identity,priority:6" json:"postal_code"`
	Country       string      `gorm:"type:varchar(2);not null;default:'US';uniqueIndex:idx_address_identity,priority:7" json:"country"`
	Phone         string      `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsDefault     bool        `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	SKU       string          `gorm:"column:sku;type:varchar(100);uniqueIndex;not null" json:"sku"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null;check:chk_products_price,price >= 0" json:"price"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Order is written once together with its items. Only Status and
// PaymentStatus change afterwards.
type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	User              *User           `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	OrderNumber       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';check:chk_orders_status,status IN ('pending','confirmed','processing','shipped','delivered','cancelled','refunded')" json:"status"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';check:chk_orders_payment_status,payment_status IN ('pending','processing','completed','failed','refunded')" json:"payment_status"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(50);not null" json:"payment_method"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	ShippingAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ShippingAddressID *uuid.UUID      `gorm:"type:uuid" json:"shipping_address_id"`
	ShippingAddress   *Address        `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"-"`
	BillingAddressID  *uuid.UUID      `gorm:"type:uuid" json:"billing_address_id"`
	BillingAddress    *Address        `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"-"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	OrderItems        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem snapshots the product's SKU, name and price at order time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	SKU        string          `gorm:"column:sku;type:varchar(100);not null" json:"sku"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity   int             `gorm:"not null;check:chk_order_items_quantity,quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// All returns every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{&User{}, &Address{}, &Product{}, &Order{}, &OrderItem{}}
}
