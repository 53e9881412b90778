package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/client"
	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/sse"
)

type CheckoutService interface {
	CreateOrder(ctx context.Context, userID *uint, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	GetOrder(ctx context.Context, orderID uint) (*model.Order, error)
	ListOrders(ctx context.Context) ([]*model.Order, error)
	AdminUpdate(ctx context.Context, orderID uint, req *dto.AdminOrderUpdate) (*model.Order, error)
}

type checkoutServiceImpl struct {
	db           *gorm.DB
	catalogRepo  repository.CatalogRepository
	orderRepo    repository.OrderRepository
	promoService PromoService
	paymobClient client.PaymobClient
	bus          *sse.Bus
	logger       *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	catalogRepo repository.CatalogRepository,
	orderRepo repository.OrderRepository,
	promoService PromoService,
	paymobClient client.PaymobClient,
	bus *sse.Bus,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:           db,
		catalogRepo:  catalogRepo,
		orderRepo:    orderRepo,
		promoService: promoService,
		paymobClient: paymobClient,
		bus:          bus,
		logger:       logger,
	}
}

// CreateOrder prices the cart, applies an optional promo code, persists the
// order in (Pending, pending) and opens the gateway transaction keyed by the
// fresh order id. A gateway failure leaves the order pending and surfaces
// only ErrPaymentUnavailable; the user retries the whole flow.
func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, userID *uint, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	productIDs := make([]uint, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.catalogRepo.FindProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	byID := make(map[uint]*model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	subtotal := decimal.Zero
	orderItems := make([]*model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}

		unitPrice := product.Price
		for _, v := range product.Variants {
			if item.Variant != "" && v.Name == item.Variant && v.Price > 0 {
				unitPrice = v.Price
			}
		}

		subtotal = subtotal.Add(decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))

		orderItems[i] = &model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Variant:   item.Variant,
			UnitPrice: unitPrice,
			Quantity:  item.Quantity,
		}
	}

	subtotalF, _ := subtotal.Round(2).Float64()

	var discount, discountPct float64
	var appliedCode string
	if req.PromoCode != "" {
		result, err := s.promoService.Validate(ctx, req.PromoCode)
		if err != nil {
			return nil, fmt.Errorf("validate promo code: %w", err)
		}
		if result.Valid {
			discountPct = result.DiscountPercent
			discount = Discount(subtotalF, discountPct)
			appliedCode = req.PromoCode
		} else {
			// invalid codes don't block checkout; the cart proceeds undiscounted
			s.logger.Info("promo code rejected at checkout",
				zap.String("code", req.PromoCode), zap.String("reason", result.Reason))
		}
	}

	total := subtotalF - discount

	order := &model.Order{
		UserID:          userID,
		Subtotal:        subtotalF,
		DiscountAmount:  discount,
		DiscountPercent: discountPct,
		PromoCode:       appliedCode,
		TotalAmount:     total,
		OrderState:      model.OrderStatePending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   "card",
		Address: model.Address{
			FullName:   req.Address.FullName,
			Email:      req.Address.Email,
			Phone:      req.Address.Phone,
			Street:     req.Address.Street,
			City:       req.Address.City,
			State:      req.Address.State,
			PostalCode: req.Address.PostalCode,
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		for _, item := range orderItems {
			item.OrderID = order.ID
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	firstName, lastName := client.SplitName(req.Address.FullName)
	payment, err := s.paymobClient.CreatePayment(ctx, total, MerchantRefForOrder(order.ID), model.PaymobBillingData{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       req.Address.Email,
		PhoneNumber: req.Address.Phone,
		Street:      req.Address.Street,
		City:        req.Address.City,
		State:       req.Address.State,
		PostalCode:  req.Address.PostalCode,
	})
	if err != nil {
		s.logger.Error("gateway handshake failed",
			zap.Uint("orderId", order.ID), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	if err := s.orderRepo.SetGatewayOrderID(ctx, order.ID, payment.GatewayOrderID); err != nil {
		return nil, fmt.Errorf("store gateway order id: %w", err)
	}
	order.GatewayOrderID = payment.GatewayOrderID

	s.bus.Broadcast(sse.EventNewOrder, order)

	return &dto.CheckoutResponse{
		OrderID:   order.ID,
		Total:     total,
		IframeURL: payment.IframeURL,
	}, nil
}

func (s *checkoutServiceImpl) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *checkoutServiceImpl) ListOrders(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.List(ctx)
}

// AdminUpdate is the manual path: present fields are written directly,
// without the payment transition guards.
func (s *checkoutServiceImpl) AdminUpdate(ctx context.Context, orderID uint, req *dto.AdminOrderUpdate) (*model.Order, error) {
	updates := map[string]interface{}{}
	if req.OrderState != nil {
		updates["order_state"] = *req.OrderState
	}
	if req.PaymentStatus != nil {
		updates["payment_status"] = *req.PaymentStatus
	}
	if req.TrackingNumber != nil {
		updates["tracking_number"] = *req.TrackingNumber
	}
	if req.ShippedAt != nil {
		updates["shipped_at"] = *req.ShippedAt
	}
	if req.DeliveredAt != nil {
		updates["delivered_at"] = *req.DeliveredAt
	}
	if len(updates) == 0 {
		return s.GetOrder(ctx, orderID)
	}

	order, err := s.orderRepo.AdminUpdate(ctx, orderID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("admin update order: %w", err)
	}

	s.bus.Broadcast(sse.EventOrderUpdated, order)

	return order, nil
}
