package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront-service/internal/config"
	"storefront-service/internal/model"
)

// paymentKeyExpiration is passed to the gateway; the hosted page stops
// accepting the token after this many seconds. Not enforced locally.
const paymentKeyExpiration = 3600

type PaymobClient interface {
	// CreatePayment runs the full handshake: auth token, remote order
	// registration keyed by merchantRef, then a payment key for the hosted
	// page. Any failing step aborts the sequence; the caller retries the
	// whole flow, never a single step.
	CreatePayment(ctx context.Context, amount float64, merchantRef string, billing model.PaymobBillingData) (*CreatePaymentResponse, error)

	// VerifyHMAC recomputes the webhook signature over the gateway's fixed
	// field concatenation and compares it to the received hex digest.
	VerifyHMAC(txn *model.PaymobTransaction, received string) bool

	HasHMACSecret() bool
}

type CreatePaymentResponse struct {
	GatewayOrderID int64
	PaymentToken   string
	IframeURL      string
}

type paymobClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	apiKey        string
	hmacSecret    string
	integrationID int
	iframeID      string
	currency      string
	country       string
}

func NewPaymobClient(paymobCfg *config.Paymob) PaymobClient {
	return &paymobClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    strings.TrimRight(paymobCfg.BaseApiURL, "/"),
		apiKey:        paymobCfg.APIKey,
		hmacSecret:    paymobCfg.HMACSecret,
		integrationID: paymobCfg.IntegrationID,
		iframeID:      paymobCfg.IframeID,
		currency:      paymobCfg.Currency,
		country:       paymobCfg.Country,
	}
}

// AmountCents converts a major-unit amount to the gateway's minor units,
// rounding half away from zero.
func AmountCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (c *paymobClientImpl) CreatePayment(ctx context.Context, amount float64, merchantRef string, billing model.PaymobBillingData) (*CreatePaymentResponse, error) {
	amountCents := AmountCents(amount)

	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("paymob authenticate: %w", err)
	}

	gatewayOrderID, err := c.registerOrder(ctx, token, amountCents, merchantRef)
	if err != nil {
		return nil, fmt.Errorf("paymob register order: %w", err)
	}

	paymentToken, err := c.paymentKey(ctx, token, gatewayOrderID, amountCents, billing)
	if err != nil {
		return nil, fmt.Errorf("paymob payment key: %w", err)
	}

	return &CreatePaymentResponse{
		GatewayOrderID: gatewayOrderID,
		PaymentToken:   paymentToken,
		IframeURL: fmt.Sprintf("%s/api/acceptance/iframes/%s?payment_token=%s",
			c.baseApiURL, c.iframeID, paymentToken),
	}, nil
}

func (c *paymobClientImpl) authenticate(ctx context.Context) (string, error) {
	var res model.PaymobAuthResponse
	err := c.post(ctx, "/api/auth/tokens", &model.PaymobAuthRequest{APIKey: c.apiKey}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("empty auth token in response")
	}
	return res.Token, nil
}

func (c *paymobClientImpl) registerOrder(ctx context.Context, authToken string, amountCents int64, merchantRef string) (int64, error) {
	var res model.PaymobOrderResponse
	err := c.post(ctx, "/api/ecommerce/orders", &model.PaymobOrderRequest{
		AuthToken:       authToken,
		DeliveryNeeded:  false,
		AmountCents:     amountCents,
		Currency:        c.currency,
		MerchantOrderID: merchantRef,
	}, &res)
	if err != nil {
		return 0, err
	}
	if res.ID == 0 {
		return 0, fmt.Errorf("missing gateway order id in response")
	}
	return res.ID, nil
}

func (c *paymobClientImpl) paymentKey(ctx context.Context, authToken string, gatewayOrderID, amountCents int64, billing model.PaymobBillingData) (string, error) {
	billing.Country = c.country

	var res model.PaymobPaymentKeyResponse
	err := c.post(ctx, "/api/acceptance/payment_keys", &model.PaymobPaymentKeyRequest{
		AuthToken:     authToken,
		AmountCents:   amountCents,
		Expiration:    paymentKeyExpiration,
		OrderID:       gatewayOrderID,
		BillingData:   billing,
		Currency:      c.currency,
		IntegrationID: c.integrationID,
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", fmt.Errorf("empty payment token in response")
	}
	return res.Token, nil
}

// post sends a JSON body and decodes a JSON response, checking the status
// code before touching the body. Upstream error bodies are summarized into
// the error, never returned to callers verbatim.
func (c *paymobClientImpl) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("gateway returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}

	return nil
}

// SplitName splits a full name into the first/last pair the gateway's
// billing contract requires.
func SplitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
