package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/client"
	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
)

type PurchaseService interface {
	CreatePurchase(ctx context.Context, templateID uint, buyerID *uint, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error)
	GetPurchase(ctx context.Context, purchaseID string) (*model.Purchase, error)
	Download(ctx context.Context, purchaseID string) (string, error)
}

type purchaseServiceImpl struct {
	catalogRepo  repository.CatalogRepository
	purchaseRepo repository.PurchaseRepository
	paymobClient client.PaymobClient
	logger       *zap.Logger
}

func NewPurchaseService(
	catalogRepo repository.CatalogRepository,
	purchaseRepo repository.PurchaseRepository,
	paymobClient client.PaymobClient,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseServiceImpl{
		catalogRepo:  catalogRepo,
		purchaseRepo: purchaseRepo,
		paymobClient: paymobClient,
		logger:       logger,
	}
}

// CreatePurchase freezes the template's name, price and file key into the
// purchase row before opening the gateway transaction, so later edits to
// the template cannot change what this buyer is entitled to download.
func (s *purchaseServiceImpl) CreatePurchase(ctx context.Context, templateID uint, buyerID *uint, req *dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	template, err := s.catalogRepo.FindTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find template: %w", err)
	}

	purchase := &model.Purchase{
		ID:            uuid.NewString(),
		BuyerID:       buyerID,
		BuyerEmail:    req.Email,
		TemplateID:    template.ID,
		TemplateName:  template.Name,
		TemplatePrice: template.Price,
		TemplateFile:  template.FileKey,
		PaymentStatus: model.PaymentStatusPending,
		MaxDownloads:  5,
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("store purchase: %w", err)
	}

	firstName, lastName := client.SplitName(req.Name)
	payment, err := s.paymobClient.CreatePayment(ctx, template.Price, MerchantRefForPurchase(purchase.ID), model.PaymobBillingData{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       req.Email,
		PhoneNumber: req.Phone,
	})
	if err != nil {
		s.logger.Error("gateway handshake failed",
			zap.String("purchaseId", purchase.ID), zap.Error(err))
		return nil, ErrPaymentUnavailable
	}

	if err := s.purchaseRepo.SetGatewayOrderID(ctx, purchase.ID, payment.GatewayOrderID); err != nil {
		return nil, fmt.Errorf("store gateway order id: %w", err)
	}

	return &dto.PurchaseResponse{
		PurchaseID: purchase.ID,
		Total:      template.Price,
		IframeURL:  payment.IframeURL,
	}, nil
}

func (s *purchaseServiceImpl) GetPurchase(ctx context.Context, purchaseID string) (*model.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	return purchase, nil
}

// Download hands out the frozen file key while the paid purchase still has
// download credit. The counter bump is a conditional write, so concurrent
// downloads cannot overshoot the limit.
func (s *purchaseServiceImpl) Download(ctx context.Context, purchaseID string) (string, error) {
	granted, err := s.purchaseRepo.IncrementDownloads(ctx, purchaseID)
	if err != nil {
		return "", fmt.Errorf("increment downloads: %w", err)
	}

	if !granted {
		purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrPurchaseNotFound
			}
			return "", fmt.Errorf("find purchase: %w", err)
		}
		if purchase.PaymentStatus != model.PaymentStatusPaid {
			return "", ErrPurchaseNotPaid
		}
		return "", ErrDownloadsUsedUp
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return "", fmt.Errorf("find purchase: %w", err)
	}

	return purchase.TemplateFile, nil
}
