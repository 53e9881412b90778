package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

type PromoCodeRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	MarkExpired(ctx context.Context, promoID uint) error
	Activate(ctx context.Context, promoID uint) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type promoCodeRepoImpl struct {
	db *gorm.DB
}

func NewPromoCodeRepository(db *gorm.DB) PromoCodeRepository {
	return &promoCodeRepoImpl{
		db: db,
	}
}

func (r *promoCodeRepoImpl) Create(ctx context.Context, promo *model.PromoCode) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *promoCodeRepoImpl) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var promo model.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&promo).Error

	if err != nil {
		return nil, err
	}

	return &promo, nil
}

// MarkExpired is safe to apply redundantly; expiry never reverses.
func (r *promoCodeRepoImpl) MarkExpired(ctx context.Context, promoID uint) error {
	return r.db.WithContext(ctx).Model(&model.PromoCode{}).
		Where("id = ? AND state <> ?", promoID, model.PromoStateExpired).
		Updates(map[string]interface{}{
			"state":      model.PromoStateExpired,
			"updated_at": time.Now(),
		}).Error
}

// Activate only moves inactive codes forward; expired codes stay expired.
func (r *promoCodeRepoImpl) Activate(ctx context.Context, promoID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.PromoCode{}).
		Where("id = ? AND state = ?", promoID, model.PromoStateInactive).
		Updates(map[string]interface{}{
			"state":      model.PromoStateActive,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// ExpireOverdue is the periodic sweep; the lazy flip at validation time
// covers codes read between sweeps.
func (r *promoCodeRepoImpl) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.PromoCode{}).
		Where("state = ? AND end_date < ?", model.PromoStateActive, now).
		Updates(map[string]interface{}{
			"state":      model.PromoStateExpired,
			"updated_at": now,
		})

	return result.RowsAffected, result.Error
}
