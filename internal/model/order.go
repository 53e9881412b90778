package model

import "time"

type OrderState string

const (
	OrderStatePending    OrderState = "Pending"
	OrderStateProcessing OrderState = "Processing"
	OrderStateShipped    OrderState = "Shipped"
	OrderStateDelivered  OrderState = "Delivered"
	OrderStateCancelled  OrderState = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Address is embedded directly in the order so guest checkouts need no
// user record.
type Address struct {
	FullName   string `gorm:"size:128" json:"fullName"`
	Email      string `gorm:"size:128" json:"email"`
	Phone      string `gorm:"size:32" json:"phone"`
	Street     string `gorm:"size:256" json:"street"`
	City       string `gorm:"size:64" json:"city"`
	State      string `gorm:"size:64" json:"state"`
	PostalCode string `gorm:"size:16" json:"postalCode"`
	Country    string `gorm:"size:2" json:"country"`
}

type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// nil for guest checkout
	UserID *uint `gorm:"index" json:"userId,omitempty"`

	Subtotal        float64       `gorm:"not null" json:"subtotal"`
	DiscountAmount  float64       `json:"discountAmount"`
	DiscountPercent float64       `json:"discountPercent"`
	PromoCode       string        `gorm:"size:64" json:"promoCode,omitempty"`
	TotalAmount     float64       `gorm:"not null" json:"totalAmount"`
	OrderState      OrderState    `gorm:"size:32;index;not null" json:"orderState"`
	PaymentStatus   PaymentStatus `gorm:"size:16;index;not null" json:"paymentStatus"`
	PaymentMethod   string        `gorm:"size:32" json:"paymentMethod"`

	// ids reported back by the payment gateway
	GatewayOrderID int64 `gorm:"index" json:"gatewayOrderId,omitempty"`
	GatewayTxnID   int64 `json:"gatewayTxnId,omitempty"`

	Address Address `gorm:"embedded;embeddedPrefix:addr_" json:"address"`

	TrackingNumber string     `gorm:"size:64" json:"trackingNumber,omitempty"`
	ShippedAt      *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderItem freezes name/price/variant at checkout time so later catalog
// edits do not change what was sold.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"orderId"`
	ProductID uint    `gorm:"index;not null" json:"productId"`
	Name      string  `gorm:"size:128;not null" json:"name"`
	Variant   string  `gorm:"size:64" json:"variant,omitempty"`
	UnitPrice float64 `gorm:"not null" json:"unitPrice"`
	Quantity  int     `gorm:"not null" json:"quantity"`

	CreatedAt time.Time `json:"createdAt"`
}
