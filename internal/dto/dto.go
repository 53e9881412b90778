package dto

import "time"

type CheckoutItem struct {
	ProductID uint   `json:"productId" validate:"required"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type CheckoutAddress struct {
	FullName   string `json:"fullName" validate:"required,max=128"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Street     string `json:"street" validate:"required,max=256"`
	City       string `json:"city" validate:"required,max=64"`
	State      string `json:"state" validate:"max=64"`
	PostalCode string `json:"postalCode" validate:"max=16"`
}

type CheckoutRequest struct {
	Items     []CheckoutItem  `json:"items" validate:"required,min=1,dive"`
	Address   CheckoutAddress `json:"address" validate:"required"`
	PromoCode string          `json:"promoCode" validate:"max=64"`
}

type CheckoutResponse struct {
	OrderID   uint    `json:"orderId"`
	Total     float64 `json:"total"`
	IframeURL string  `json:"iframeUrl"`
}

type PromoValidateRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type PromoValidateResponse struct {
	Valid              bool    `json:"valid"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
	Error              string  `json:"error,omitempty"`
}

type PromoCreateRequest struct {
	Code            string    `json:"code" validate:"required,max=64"`
	DiscountPercent float64   `json:"discountPercentage" validate:"required,gt=0,lte=100"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

type PurchaseRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,max=32"`
	Name  string `json:"name" validate:"required,max=128"`
}

type PurchaseResponse struct {
	PurchaseID string  `json:"purchaseId"`
	Total      float64 `json:"total"`
	IframeURL  string  `json:"iframeUrl"`
}

// AdminOrderUpdate is the unconstrained manual path: any present field is
// written as-is, bypassing the payment-driven transition guards.
type AdminOrderUpdate struct {
	OrderState     *string    `json:"orderState" validate:"omitempty,oneof=Pending Processing Shipped Delivered Cancelled"`
	PaymentStatus  *string    `json:"paymentStatus" validate:"omitempty,oneof=pending paid failed refunded"`
	TrackingNumber *string    `json:"trackingNumber" validate:"omitempty,max=64"`
	ShippedAt      *time.Time `json:"shippedAt"`
	DeliveredAt    *time.Time `json:"deliveredAt"`
}

type WebhookAck struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}
