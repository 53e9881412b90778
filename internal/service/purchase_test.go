package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/client"
	"storefront-service/internal/dto"
	"storefront-service/internal/model"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"
)

func newPurchaseFixture(t *testing.T) (service.PurchaseService, repository.PurchaseRepository, *model.Template, *fakePaymobClient) {
	db := newTestDB(t)

	template := &model.Template{
		Name:    "Portfolio Landing Page",
		Price:   49.00,
		FileKey: "templates/portfolio-v1.zip",
	}
	require.NoError(t, db.Create(template).Error)

	purchaseRepo := repository.NewPurchaseRepository(db)
	paymob := &fakePaymobClient{
		hasSecret: true,
		goodHMAC:  "good",
		payment: &client.CreatePaymentResponse{
			GatewayOrderID: 600,
			PaymentToken:   "tok_tpl",
			IframeURL:      "https://accept.example.com/api/acceptance/iframes/777?payment_token=tok_tpl",
		},
	}

	svc := service.NewPurchaseService(repository.NewCatalogRepository(db), purchaseRepo, paymob, testLogger())
	return svc, purchaseRepo, template, paymob
}

func purchaseRequest() *dto.PurchaseRequest {
	return &dto.PurchaseRequest{
		Email: "buyer@example.com",
		Phone: "+201111111111",
		Name:  "Omar Khaled",
	}
}

func TestPurchase_SnapshotSurvivesTemplateEdits(t *testing.T) {
	svc, purchaseRepo, template, _ := newPurchaseFixture(t)
	ctx := context.Background()

	resp, err := svc.CreatePurchase(ctx, template.ID, nil, purchaseRequest())
	require.NoError(t, err)
	assert.Equal(t, 49.00, resp.Total)

	purchase, err := purchaseRepo.FindByID(ctx, resp.PurchaseID)
	require.NoError(t, err)

	// the source template changes after purchase initiation
	template.Price = 99.00
	template.FileKey = "templates/portfolio-v2.zip"

	assert.Equal(t, "Portfolio Landing Page", purchase.TemplateName)
	assert.Equal(t, 49.00, purchase.TemplatePrice)
	assert.Equal(t, "templates/portfolio-v1.zip", purchase.TemplateFile)
	assert.Equal(t, model.PaymentStatusPending, purchase.PaymentStatus)
	assert.Equal(t, int64(600), purchase.GatewayOrderID)
}

func TestPurchase_DownloadRequiresPayment(t *testing.T) {
	svc, purchaseRepo, template, _ := newPurchaseFixture(t)
	ctx := context.Background()

	resp, err := svc.CreatePurchase(ctx, template.ID, nil, purchaseRequest())
	require.NoError(t, err)

	_, err = svc.Download(ctx, resp.PurchaseID)
	assert.ErrorIs(t, err, service.ErrPurchaseNotPaid)

	changed, err := purchaseRepo.MarkPaid(ctx, resp.PurchaseID, 9005)
	require.NoError(t, err)
	require.True(t, changed)

	file, err := svc.Download(ctx, resp.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, "templates/portfolio-v1.zip", file)
}

func TestPurchase_DownloadCounterLimits(t *testing.T) {
	svc, purchaseRepo, template, _ := newPurchaseFixture(t)
	ctx := context.Background()

	resp, err := svc.CreatePurchase(ctx, template.ID, nil, purchaseRequest())
	require.NoError(t, err)

	_, err = purchaseRepo.MarkPaid(ctx, resp.PurchaseID, 9005)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Download(ctx, resp.PurchaseID)
		require.NoError(t, err)
	}

	_, err = svc.Download(ctx, resp.PurchaseID)
	assert.ErrorIs(t, err, service.ErrDownloadsUsedUp)

	purchase, err := purchaseRepo.FindByID(ctx, resp.PurchaseID)
	require.NoError(t, err)
	assert.Equal(t, 5, purchase.Downloads)
}

func TestPurchase_UnknownTemplate(t *testing.T) {
	svc, _, _, _ := newPurchaseFixture(t)

	_, err := svc.CreatePurchase(context.Background(), 999, nil, purchaseRequest())
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}
