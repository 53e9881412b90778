package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*model.Purchase, error)
	SetGatewayOrderID(ctx context.Context, purchaseID string, gatewayOrderID int64) error
	MarkPaid(ctx context.Context, purchaseID string, txnID int64) (bool, error)
	MarkFailed(ctx context.Context, purchaseID string, txnID int64) (bool, error)
	IncrementDownloads(ctx context.Context, purchaseID string) (bool, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("id = ?", purchaseID).
		First(&purchase).Error

	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

func (r *purchaseRepoImpl) FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&purchase).Error

	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

func (r *purchaseRepoImpl) SetGatewayOrderID(ctx context.Context, purchaseID string, gatewayOrderID int64) error {
	return r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ?", purchaseID).
		Update("gateway_order_id", gatewayOrderID).Error
}

// MarkPaid and MarkFailed carry the same pending-only guard as orders.
func (r *purchaseRepoImpl) MarkPaid(ctx context.Context, purchaseID string, txnID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND payment_status = ?", purchaseID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"gateway_txn_id": txnID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	return false, r.exists(ctx, purchaseID)
}

func (r *purchaseRepoImpl) MarkFailed(ctx context.Context, purchaseID string, txnID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND payment_status = ?", purchaseID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusFailed,
			"gateway_txn_id": txnID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	return false, r.exists(ctx, purchaseID)
}

// IncrementDownloads bumps the counter only while the purchase is paid and
// under its download limit, in one conditional write.
func (r *purchaseRepoImpl) IncrementDownloads(ctx context.Context, purchaseID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND payment_status = ? AND downloads < max_downloads",
			purchaseID, model.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"downloads":  gorm.Expr("downloads + 1"),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *purchaseRepoImpl) exists(ctx context.Context, purchaseID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ?", purchaseID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
