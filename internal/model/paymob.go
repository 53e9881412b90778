package model

// Wire types for the Paymob Accept API. Field names follow the gateway's
// JSON contract, not ours.

type PaymobAuthRequest struct {
	APIKey string `json:"api_key"`
}

type PaymobAuthResponse struct {
	Token string `json:"token"`
}

type PaymobOrderRequest struct {
	AuthToken       string `json:"auth_token"`
	DeliveryNeeded  bool   `json:"delivery_needed"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	MerchantOrderID string `json:"merchant_order_id"`
}

type PaymobOrderResponse struct {
	ID int64 `json:"id"`
}

type PaymobBillingData struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Street         string `json:"street"`
	Building       string `json:"building"`
	Floor          string `json:"floor"`
	Apartment      string `json:"apartment"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
	ShippingMethod string `json:"shipping_method"`
}

type PaymobPaymentKeyRequest struct {
	AuthToken     string            `json:"auth_token"`
	AmountCents   int64             `json:"amount_cents"`
	Expiration    int               `json:"expiration"`
	OrderID       int64             `json:"order_id"`
	BillingData   PaymobBillingData `json:"billing_data"`
	Currency      string            `json:"currency"`
	IntegrationID int               `json:"integration_id"`
}

type PaymobPaymentKeyResponse struct {
	Token string `json:"token"`
}

// PaymobWebhookEvent is the server-to-server callback envelope. The HMAC
// arrives detached, as a query parameter on the webhook URL.
type PaymobWebhookEvent struct {
	Type string            `json:"type"`
	Obj  PaymobTransaction `json:"obj"`
}

type PaymobTransactionOrder struct {
	ID              int64  `json:"id"`
	MerchantOrderID string `json:"merchant_order_id"`
}

type PaymobSourceData struct {
	Pan     string `json:"pan"`
	SubType string `json:"sub_type"`
	Type    string `json:"type"`
}

type PaymobTransaction struct {
	ID                   int64                  `json:"id"`
	AmountCents          int64                  `json:"amount_cents"`
	CreatedAt            string                 `json:"created_at"`
	Currency             string                 `json:"currency"`
	ErrorOccured         bool                   `json:"error_occured"`
	HasParentTransaction bool                   `json:"has_parent_transaction"`
	IntegrationID        int64                  `json:"integration_id"`
	Is3DSecure           bool                   `json:"is_3d_secure"`
	IsAuth               bool                   `json:"is_auth"`
	IsCapture            bool                   `json:"is_capture"`
	IsRefunded           bool                   `json:"is_refunded"`
	IsStandalonePayment  bool                   `json:"is_standalone_payment"`
	IsVoided             bool                   `json:"is_voided"`
	Order                PaymobTransactionOrder `json:"order"`
	Owner                int64                  `json:"owner"`
	Pending              bool                   `json:"pending"`
	SourceData           PaymobSourceData       `json:"source_data"`
	Success              bool                   `json:"success"`
}
