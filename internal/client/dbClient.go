package client

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront-service/internal/model"
)

func InitDBClient(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Template{},
		&model.Purchase{},
		&model.PromoCode{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
