package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-service/internal/model"
	"storefront-service/internal/service"
)

type fakeReconcileService struct {
	webhookErr  error
	gotEvent    *model.PaymobWebhookEvent
	gotHMAC     string
	gotRedirect *service.RedirectParams
}

var _ service.ReconcileService = (*fakeReconcileService)(nil)

func (f *fakeReconcileService) HandleWebhook(ctx context.Context, event *model.PaymobWebhookEvent, receivedHMAC string) error {
	f.gotEvent = event
	f.gotHMAC = receivedHMAC
	return f.webhookErr
}

func (f *fakeReconcileService) HandleRedirect(ctx context.Context, params *service.RedirectParams) *service.RedirectOutcome {
	f.gotRedirect = params
	if params.Success {
		return &service.RedirectOutcome{Location: "/orders/confirmation/7"}
	}
	return &service.RedirectOutcome{Location: "/checkout?payment_error=1"}
}

func newPaymentTestServer(svc service.ReconcileService) *echo.Echo {
	e := echo.New()
	h := NewPaymentHandler(svc, zap.NewNop())
	e.POST("/api/payments/webhook", h.Webhook)
	e.GET("/api/payments/callback", h.Redirect)
	return e
}

const webhookBody = `{
	"type": "TRANSACTION",
	"obj": {
		"id": 9001,
		"amount_cents": 20000,
		"success": true,
		"order": {"id": 555, "merchant_order_id": "order-7"}
	}
}`

func TestWebhook_AcknowledgesSuccess(t *testing.T) {
	fake := &fakeReconcileService{}
	e := newPaymentTestServer(fake)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook?hmac=abc123", strings.NewReader(webhookBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())

	assert.Equal(t, "abc123", fake.gotHMAC)
	require.NotNil(t, fake.gotEvent)
	assert.Equal(t, int64(9001), fake.gotEvent.Obj.ID)
	assert.Equal(t, "order-7", fake.gotEvent.Obj.Order.MerchantOrderID)
}

func TestWebhook_SignatureMismatchIs401(t *testing.T) {
	e := newPaymentTestServer(&fakeReconcileService{webhookErr: service.ErrBadSignature})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook?hmac=forged", strings.NewReader(webhookBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_MissingSecretIs500(t *testing.T) {
	e := newPaymentTestServer(&fakeReconcileService{webhookErr: service.ErrHMACNotConfigured})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook?hmac=abc", strings.NewReader(webhookBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_InternalErrorStillAcknowledges(t *testing.T) {
	e := newPaymentTestServer(&fakeReconcileService{webhookErr: assert.AnError})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook?hmac=abc", strings.NewReader(webhookBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "the gateway must not retry-storm")
	assert.Contains(t, rec.Body.String(), `"received":true`)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRedirect_SuccessRedirectsToConfirmation(t *testing.T) {
	fake := &fakeReconcileService{}
	e := newPaymentTestServer(fake)

	req := httptest.NewRequest(http.MethodGet,
		"/api/payments/callback?success=true&id=9001&order=555&merchant_order_id=order-7", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/orders/confirmation/7", rec.Header().Get(echo.HeaderLocation))

	require.NotNil(t, fake.gotRedirect)
	assert.True(t, fake.gotRedirect.Success)
	assert.Equal(t, int64(9001), fake.gotRedirect.TxnID)
	assert.Equal(t, int64(555), fake.gotRedirect.GatewayOrderID)
	assert.Equal(t, "order-7", fake.gotRedirect.MerchantOrderID)
}

func TestRedirect_FailureCarriesDottedErrorMessage(t *testing.T) {
	fake := &fakeReconcileService{}
	e := newPaymentTestServer(fake)

	req := httptest.NewRequest(http.MethodGet,
		"/api/payments/callback?success=false&merchant_order_id=order-7&data.message=Card%20declined", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/checkout?payment_error=1", rec.Header().Get(echo.HeaderLocation))

	require.NotNil(t, fake.gotRedirect)
	assert.False(t, fake.gotRedirect.Success)
	assert.Equal(t, "Card declined", fake.gotRedirect.Message)
}

func TestRawQueryLookup(t *testing.T) {
	assert.Equal(t, "Card declined",
		rawQueryLookup("success=false&data.message=Card%20declined", "data.message"))

	// an escaped key still resolves
	assert.Equal(t, "Card declined",
		rawQueryLookup("data%2Emessage=Card%20declined", "data.message"))

	// a value with a broken escape comes back raw rather than vanishing
	assert.Equal(t, "Card%2Gdeclined",
		rawQueryLookup("data.message=Card%2Gdeclined", "data.message"))

	assert.Empty(t, rawQueryLookup("success=false", "data.message"))
}
