package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
)

// validation failure reasons, returned as data rather than errors
const (
	PromoReasonNotFound     = "promo code not found"
	PromoReasonNotActive    = "promo code is not active"
	PromoReasonNotYetActive = "promo code is not yet active"
	PromoReasonExpired      = "promo code expired"
)

type PromoResult struct {
	Valid           bool
	DiscountPercent float64
	Reason          string
}

type PromoService interface {
	Validate(ctx context.Context, code string) (*PromoResult, error)
	Create(ctx context.Context, req *dto.PromoCreateRequest, authorID uint) (*model.PromoCode, error)
	Activate(ctx context.Context, promoID uint) error
	ExpireOverdue(ctx context.Context) error
}

type promoServiceImpl struct {
	promoRepo repository.PromoCodeRepository
	logger    *zap.Logger
}

func NewPromoService(promoRepo repository.PromoCodeRepository, logger *zap.Logger) PromoService {
	return &promoServiceImpl{
		promoRepo: promoRepo,
		logger:    logger,
	}
}

// Validate looks a code up and reports whether it is usable right now.
// Failures come back as a PromoResult with a reason, not as an error; the
// only mutation is the expiry flip, which is safe to repeat.
func (s *promoServiceImpl) Validate(ctx context.Context, code string) (*PromoResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return &PromoResult{Reason: PromoReasonNotFound}, nil
	}

	now := time.Now()

	// lazy sweep so stale active rows can't validate between background runs
	if _, err := s.promoRepo.ExpireOverdue(ctx, now); err != nil {
		s.logger.Warn("promo expiry sweep failed", zap.Error(err))
	}

	promo, err := s.promoRepo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PromoResult{Reason: PromoReasonNotFound}, nil
		}
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	switch promo.State {
	case model.PromoStateExpired:
		return &PromoResult{Reason: PromoReasonExpired}, nil
	case model.PromoStateActive:
	default:
		return &PromoResult{Reason: PromoReasonNotActive}, nil
	}

	if now.Before(promo.StartDate) {
		return &PromoResult{Reason: PromoReasonNotYetActive}, nil
	}

	if now.After(promo.EndDate) {
		// stored state lagged behind the date window; correct it on read
		if err := s.promoRepo.MarkExpired(ctx, promo.ID); err != nil {
			s.logger.Warn("lazy promo expiry failed", zap.Uint("promoId", promo.ID), zap.Error(err))
		}
		return &PromoResult{Reason: PromoReasonExpired}, nil
	}

	return &PromoResult{Valid: true, DiscountPercent: promo.DiscountPercent}, nil
}

func (s *promoServiceImpl) Create(ctx context.Context, req *dto.PromoCreateRequest, authorID uint) (*model.PromoCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(req.Code))

	if _, err := s.promoRepo.FindByCode(ctx, normalized); err == nil {
		return nil, ErrPromoExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find promo code: %w", err)
	}

	promo := &model.PromoCode{
		Code:            normalized,
		DiscountPercent: req.DiscountPercent,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		State:           model.PromoStateInactive,
		AuthorID:        authorID,
	}

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("create promo code: %w", err)
	}

	return promo, nil
}

func (s *promoServiceImpl) Activate(ctx context.Context, promoID uint) error {
	activated, err := s.promoRepo.Activate(ctx, promoID)
	if err != nil {
		return fmt.Errorf("activate promo code: %w", err)
	}
	if !activated {
		return ErrPromoNotFound
	}
	return nil
}

func (s *promoServiceImpl) ExpireOverdue(ctx context.Context) error {
	expired, err := s.promoRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("expire overdue promo codes: %w", err)
	}
	if expired > 0 {
		s.logger.Info("expired promo codes", zap.Int64("count", expired))
	}
	return nil
}

// Discount computes the promo discount for a subtotal, rounded to two
// decimal places. Callers recompute this whenever subtotal or percentage
// changes; it is never stored as a derived value inside the cart.
func Discount(subtotal, percent float64) float64 {
	d := decimal.NewFromFloat(subtotal).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	f, _ := d.Float64()
	return f
}
