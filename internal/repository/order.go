package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*model.Order, error)
	SetGatewayOrderID(ctx context.Context, orderID uint, gatewayOrderID int64) error
	MarkPaid(ctx context.Context, orderID uint, txnID int64) (bool, error)
	MarkFailed(ctx context.Context, orderID uint, txnID int64) (bool, error)
	AdminUpdate(ctx context.Context, orderID uint, updates map[string]interface{}) (*model.Order, error)
	List(ctx context.Context) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByGatewayOrderID(ctx context.Context, gatewayOrderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetGatewayOrderID(ctx context.Context, orderID uint, gatewayOrderID int64) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_id", gatewayOrderID).Error
}

// MarkPaid is the guarded payment transition. The WHERE clause on
// payment_status makes it a single conditional write, so racing webhook and
// redirect handlers cannot both win even across process instances. Returns
// whether this call performed the transition; an already-settled order is a
// no-op, a missing order is gorm.ErrRecordNotFound.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, orderID uint, txnID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"order_state":    model.OrderStateProcessing,
			"gateway_txn_id": txnID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	return false, r.exists(ctx, orderID)
}

// MarkFailed flips payment_status only; the order state is untouched so a
// later manual retry path can still act on it.
func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID uint, txnID int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status = ?", orderID, model.PaymentStatusPending).
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

	return false, r.exists(ctx, orderID)
}

func (r *orderRepoImpl) exists(ctx context.Context, orderID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdminUpdate is the unconstrained manual path. It writes whatever fields
// the caller supplies, bypassing the transition guards on purpose.
func (r *orderRepoImpl) AdminUpdate(ctx context.Context, orderID uint, updates map[string]interface{}) (*model.Order, error) {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, orderID)
}

func (r *orderRepoImpl) List(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
