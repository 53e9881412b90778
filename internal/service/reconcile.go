package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/client"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/sse"
)

// Merchant references namespace the two checkout flows on the shared
// gateway account so a callback can be routed without ambiguity.
const (
	orderRefPrefix    = "order-"
	purchaseRefPrefix = "tpl-"
)

func MerchantRefForOrder(orderID uint) string {
	return fmt.Sprintf("%s%d", orderRefPrefix, orderID)
}

func MerchantRefForPurchase(purchaseID string) string {
	return purchaseRefPrefix + purchaseID
}

// RedirectOutcome tells the handler where to send the browser after the
// hosted page bounces back.
type RedirectOutcome struct {
	Location string
}

type RedirectParams struct {
	Success         bool
	TxnID           int64
	GatewayOrderID  int64
	MerchantOrderID string
	Message         string
}

type ReconcileService interface {
	// HandleWebhook verifies and applies a server-to-server callback.
	// ErrBadSignature and ErrHMACNotConfigured map to 401/500; any other
	// error is internal and the handler still acknowledges with 200.
	HandleWebhook(ctx context.Context, event *model.PaymobWebhookEvent, receivedHMAC string) error

	// HandleRedirect applies the advisory browser callback and always
	// produces a destination, whatever state the order is in.
	HandleRedirect(ctx context.Context, params *RedirectParams) *RedirectOutcome
}

type reconcileServiceImpl struct {
	orderRepo    repository.OrderRepository
	purchaseRepo repository.PurchaseRepository
	paymobClient client.PaymobClient
	bus          *sse.Bus
	logger       *zap.Logger
}

func NewReconcileService(
	orderRepo repository.OrderRepository,
	purchaseRepo repository.PurchaseRepository,
	paymobClient client.PaymobClient,
	bus *sse.Bus,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileServiceImpl{
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		paymobClient: paymobClient,
		bus:          bus,
		logger:       logger,
	}
}

func (s *reconcileServiceImpl) HandleWebhook(ctx context.Context, event *model.PaymobWebhookEvent, receivedHMAC string) error {
	if !s.paymobClient.HasHMACSecret() {
		return ErrHMACNotConfigured
	}
	if !s.paymobClient.VerifyHMAC(&event.Obj, receivedHMAC) {
		return ErrBadSignature
	}

	txn := &event.Obj
	return s.apply(ctx, txn.Order.MerchantOrderID, txn.Order.ID, txn.ID, txn.Success)
}

func (s *reconcileServiceImpl) HandleRedirect(ctx context.Context, params *RedirectParams) *RedirectOutcome {
	err := s.apply(ctx, params.MerchantOrderID, params.GatewayOrderID, params.TxnID, params.Success)
	if err != nil {
		// the browser still gets a destination; the webhook (or a retry)
		// settles the order
		s.logger.Error("redirect reconciliation failed",
			zap.String("merchantRef", params.MerchantOrderID), zap.Error(err))
	}

	orderID, purchaseID := s.resolveForRedirect(ctx, params.MerchantOrderID, params.GatewayOrderID)

	if params.Success {
		switch {
		case orderID != 0:
			return &RedirectOutcome{Location: fmt.Sprintf("/orders/confirmation/%d", orderID)}
		case purchaseID != "":
			return &RedirectOutcome{Location: "/purchases/confirmation/" + purchaseID}
		default:
			return &RedirectOutcome{Location: "/payment/success"}
		}
	}

	if orderID != 0 || purchaseID != "" {
		loc := "/checkout?payment_error=1"
		if params.Message != "" {
			loc += "&message=" + url.QueryEscape(params.Message)
		}
		return &RedirectOutcome{Location: loc}
	}
	return &RedirectOutcome{Location: "/payment/failed"}
}

// apply routes a settlement signal to the matching record and runs the
// guarded transition. Unresolvable events are logged and swallowed so the
// external caller is never handed a hard error for an unknown reference.
func (s *reconcileServiceImpl) apply(ctx context.Context, merchantRef string, gatewayOrderID, txnID int64, success bool) error {
	if orderID, ok := parseOrderRef(merchantRef); ok {
		return s.applyToOrder(ctx, orderID, txnID, success)
	}
	if purchaseID, ok := parsePurchaseRef(merchantRef); ok {
		return s.applyToPurchase(ctx, purchaseID, txnID, success)
	}

	// no usable merchant reference; fall back to the stored gateway order id
	if gatewayOrderID != 0 {
		if order, err := s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID); err == nil {
			return s.applyToOrder(ctx, order.ID, txnID, success)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find order by gateway id: %w", err)
		}

		if purchase, err := s.purchaseRepo.FindByGatewayOrderID(ctx, gatewayOrderID); err == nil {
			return s.applyToPurchase(ctx, purchase.ID, txnID, success)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find purchase by gateway id: %w", err)
		}
	}

	s.logger.Warn("payment event matched no order",
		zap.String("merchantRef", merchantRef),
		zap.Int64("gatewayOrderId", gatewayOrderID),
		zap.Int64("txnId", txnID))
	return nil
}

func (s *reconcileServiceImpl) applyToOrder(ctx context.Context, orderID uint, txnID int64, success bool) error {
	var (
		changed bool
		err     error
	)
	if success {
		changed, err = s.orderRepo.MarkPaid(ctx, orderID, txnID)
	} else {
		changed, err = s.orderRepo.MarkFailed(ctx, orderID, txnID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("payment event for unknown order", zap.Uint("orderId", orderID))
			return nil
		}
		return fmt.Errorf("order transition: %w", err)
	}

	if changed {
		if order, err := s.orderRepo.FindByID(ctx, orderID); err == nil {
			s.bus.Broadcast(sse.EventOrderUpdated, order)
		}
	}
	return nil
}

func (s *reconcileServiceImpl) applyToPurchase(ctx context.Context, purchaseID string, txnID int64, success bool) error {
	var err error
	if success {
		_, err = s.purchaseRepo.MarkPaid(ctx, purchaseID, txnID)
	} else {
		_, err = s.purchaseRepo.MarkFailed(ctx, purchaseID, txnID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("payment event for unknown purchase", zap.String("purchaseId", purchaseID))
			return nil
		}
		return fmt.Errorf("purchase transition: %w", err)
	}
	return nil
}

func (s *reconcileServiceImpl) resolveForRedirect(ctx context.Context, merchantRef string, gatewayOrderID int64) (uint, string) {
	if orderID, ok := parseOrderRef(merchantRef); ok {
		return orderID, ""
	}
	if purchaseID, ok := parsePurchaseRef(merchantRef); ok {
		return 0, purchaseID
	}
	if gatewayOrderID != 0 {
		if order, err := s.orderRepo.FindByGatewayOrderID(ctx, gatewayOrderID); err == nil {
			return order.ID, ""
		}
		if purchase, err := s.purchaseRepo.FindByGatewayOrderID(ctx, gatewayOrderID); err == nil {
			return 0, purchase.ID
		}
	}
	return 0, ""
}

func parseOrderRef(merchantRef string) (uint, bool) {
	raw := merchantRef
	if strings.HasPrefix(raw, orderRefPrefix) {
		raw = strings.TrimPrefix(raw, orderRefPrefix)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parsePurchaseRef(merchantRef string) (string, bool) {
	if !strings.HasPrefix(merchantRef, purchaseRefPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(merchantRef, purchaseRefPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}
