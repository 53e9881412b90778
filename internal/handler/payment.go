package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/service"
)

type PaymentHandler struct {
	reconcileService service.ReconcileService
	logger           *zap.Logger
}

func NewPaymentHandler(reconcileService service.ReconcileService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		reconcileService: reconcileService,
		logger:           logger,
	}
}

// Webhook is the authoritative server-to-server path. Apart from a bad
// signature (401) or missing secret (500) it always acknowledges with 200
// so the gateway does not retry-storm; internal failures go to the log and
// the ack's error field.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	var event model.PaymobWebhookEvent
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed webhook payload")
	}

	err := h.reconcileService.HandleWebhook(ctx, &event, c.QueryParam("hmac"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
	case err == service.ErrHMACNotConfigured:
		h.logger.Error("webhook rejected: hmac secret not configured")
		return c.JSON(http.StatusInternalServerError, dto.WebhookAck{Error: "server misconfigured"})
	case err == service.ErrBadSignature:
		return c.JSON(http.StatusUnauthorized, dto.WebhookAck{Error: "signature mismatch"})
	default:
		h.logger.Error("webhook processing failed", zap.Error(err))
		return c.JSON(http.StatusOK, dto.WebhookAck{Received: true, Error: "processing failed"})
	}
}

// Redirect is the advisory browser path. It never renders an error page;
// whatever happens, the user ends up somewhere sensible.
func (h *PaymentHandler) Redirect(c echo.Context) error {
	ctx := c.Request().Context()

	txnID, _ := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	gatewayOrderID, _ := strconv.ParseInt(c.QueryParam("order"), 10, 64)

	params := &service.RedirectParams{
		Success:         c.QueryParam("success") == "true",
		TxnID:           txnID,
		GatewayOrderID:  gatewayOrderID,
		MerchantOrderID: c.QueryParam("merchant_order_id"),
		Message:         queryParamWithFallback(c, "data.message"),
	}

	outcome := h.reconcileService.HandleRedirect(ctx, params)

	return c.Redirect(http.StatusFound, outcome.Location)
}

// queryParamWithFallback recovers keys that standard query parsing loses,
// such as the gateway's literal dotted "data.message" key sitting next to
// malformed escapes elsewhere in the query string.
func queryParamWithFallback(c echo.Context, key string) string {
	if v := c.QueryParam(key); v != "" {
		return v
	}
	return rawQueryLookup(c.Request().URL.RawQuery, key)
}

func rawQueryLookup(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if unescaped, err := url.QueryUnescape(k); err == nil {
			k = unescaped
		}
		if k != key {
			continue
		}
		if unescaped, err := url.QueryUnescape(v); err == nil {
			return unescaped
		}
		return v
	}
	return ""
}
