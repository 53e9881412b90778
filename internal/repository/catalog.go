package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront-service/internal/model"
)

type CatalogRepository interface {
	FindProduct(ctx context.Context, productID uint) (*model.Product, error)
	FindProducts(ctx context.Context, productIDs []uint) ([]*model.Product, error)
	FindTemplate(ctx context.Context, templateID uint) (*model.Template, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) FindProduct(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *catalogRepoImpl) FindProducts(ctx context.Context, productIDs []uint) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id IN ?", productIDs).
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *catalogRepoImpl) FindTemplate(ctx context.Context, templateID uint) (*model.Template, error) {
	var template model.Template
	err := r.db.WithContext(ctx).
		Where("id = ?", templateID).
		First(&template).Error

	if err != nil {
		return nil, err
	}

	return &template, nil
}
