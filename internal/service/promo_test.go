package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
)

type fakePromoRepo struct {
	codes      map[string]*model.PromoCode
	sweepCalls int
}

var _ repository.PromoCodeRepository = (*fakePromoRepo)(nil)

func newFakePromoRepo() *fakePromoRepo {
	return &fakePromoRepo{codes: make(map[string]*model.PromoCode)}
}

func (f *fakePromoRepo) Create(ctx context.Context, promo *model.PromoCode) error {
	promo.ID = uint(len(f.codes) + 1)
	f.codes[promo.Code] = promo
	return nil
}

func (f *fakePromoRepo) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	promo, ok := f.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *promo
	return &clone, nil
}

func (f *fakePromoRepo) MarkExpired(ctx context.Context, promoID uint) error {
	for _, p := range f.codes {
		if p.ID == promoID {
			p.State = model.PromoStateExpired
		}
	}
	return nil
}

func (f *fakePromoRepo) Activate(ctx context.Context, promoID uint) (bool, error) {
	for _, p := range f.codes {
		if p.ID == promoID && p.State == model.PromoStateInactive {
			p.State = model.PromoStateActive
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePromoRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	f.sweepCalls++
	var n int64
	for _, p := range f.codes {
		if p.State == model.PromoStateActive && p.EndDate.Before(now) {
			p.State = model.PromoStateExpired
			n++
		}
	}
	return n, nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestPromoValidate_Valid(t *testing.T) {
	repo := newFakePromoRepo()
	repo.codes["SPRING25"] = &model.PromoCode{
		ID:              1,
		Code:            "SPRING25",
		DiscountPercent: 25,
		StartDate:       time.Now().Add(-24 * time.Hour),
		EndDate:         time.Now().Add(24 * time.Hour),
		State:           model.PromoStateActive,
	}
	svc := service.NewPromoService(repo, testLogger())

	// input is normalized before lookup
	result, err := svc.Validate(context.Background(), "  spring25 ")
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 25.0, result.DiscountPercent)
}

func TestPromoValidate_Reasons(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		promo  *model.PromoCode
		code   string
		reason string
	}{
		{
			name:   "unknown code",
			code:   "NOPE",
			reason: service.PromoReasonNotFound,
		},
		{
			name: "inactive code",
			promo: &model.PromoCode{
				ID: 1, Code: "DRAFT", DiscountPercent: 10,
				StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour),
				State: model.PromoStateInactive,
			},
			code:   "DRAFT",
			reason: service.PromoReasonNotActive,
		},
		{
			name: "not yet started",
			promo: &model.PromoCode{
				ID: 2, Code: "SOON", DiscountPercent: 10,
				StartDate: now.Add(time.Hour), EndDate: now.Add(48 * time.Hour),
				State: model.PromoStateActive,
			},
			code:   "SOON",
			reason: service.PromoReasonNotYetActive,
		},
		{
			name: "already marked expired",
			promo: &model.PromoCode{
				ID: 3, Code: "OLD", DiscountPercent: 10,
				StartDate: now.Add(-48 * time.Hour), EndDate: now.Add(-time.Hour),
				State: model.PromoStateExpired,
			},
			code:   "OLD",
			reason: service.PromoReasonExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePromoRepo()
			if tt.promo != nil {
				repo.codes[tt.promo.Code] = tt.promo
			}
			svc := service.NewPromoService(repo, testLogger())

			result, err := svc.Validate(context.Background(), tt.code)
			require.NoError(t, err)

			assert.False(t, result.Valid)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestPromoValidate_LazyExpiry(t *testing.T) {
	// stored state still says active but the window has closed
	repo := newFakePromoRepo()
	repo.codes["STALE"] = &model.PromoCode{
		ID:              1,
		Code:            "STALE",
		DiscountPercent: 15,
		StartDate:       time.Now().Add(-48 * time.Hour),
		EndDate:         time.Now().Add(-time.Hour),
		State:           model.PromoStateActive,
	}
	svc := service.NewPromoService(repo, testLogger())

	result, err := svc.Validate(context.Background(), "STALE")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, service.PromoReasonExpired, result.Reason)
	assert.Equal(t, model.PromoStateExpired, repo.codes["STALE"].State,
		"the read must correct the stored state")
	assert.Equal(t, 1, repo.sweepCalls)
}

func TestPromoCreateAndActivate(t *testing.T) {
	repo := newFakePromoRepo()
	svc := service.NewPromoService(repo, testLogger())

	promo, err := svc.Create(context.Background(), &dto.PromoCreateRequest{
		Code:            "welcome10",
		DiscountPercent: 10,
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(72 * time.Hour),
	}, 3)
	require.NoError(t, err)

	assert.Equal(t, "WELCOME10", promo.Code, "codes are stored upper-case")
	assert.Equal(t, model.PromoStateInactive, promo.State)

	_, err = svc.Create(context.Background(), &dto.PromoCreateRequest{
		Code:            "WELCOME10",
		DiscountPercent: 20,
		StartDate:       time.Now(),
		EndDate:         time.Now().Add(time.Hour),
	}, 3)
	assert.ErrorIs(t, err, service.ErrPromoExists)

	require.NoError(t, svc.Activate(context.Background(), promo.ID))
	assert.Equal(t, model.PromoStateActive, repo.codes["WELCOME10"].State)

	// activation does not repeat and never resurrects other states
	assert.ErrorIs(t, svc.Activate(context.Background(), promo.ID), service.ErrPromoNotFound)
}

func TestDiscountArithmetic(t *testing.T) {
	assert.Equal(t, 125.0, service.Discount(500.00, 25))
	assert.Equal(t, 0.0, service.Discount(500.00, 0))
	assert.Equal(t, 500.0, service.Discount(500.00, 100))
	// rounds to two decimal places
	assert.Equal(t, 33.33, service.Discount(99.99, 33.33))
}
