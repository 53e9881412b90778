package service

import "errors"

var (
	// ErrPaymentUnavailable is the only error checkout surfaces for a failed
	// gateway handshake; upstream error bodies never leave the service.
	ErrPaymentUnavailable = errors.New("payment service unavailable")

	ErrOrderNotFound    = errors.New("order not found")
	ErrProductNotFound  = errors.New("some products not found")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrPromoNotFound    = errors.New("promo code not found")
	ErrPromoExists      = errors.New("promo code already exists")

	ErrPurchaseNotPaid = errors.New("purchase is not paid")
	ErrDownloadsUsedUp = errors.New("download limit reached")

	// webhook authenticity failures
	ErrBadSignature      = errors.New("webhook signature mismatch")
	ErrHMACNotConfigured = errors.New("webhook secret is not configured")
)
