package model

import "time"

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:128;not null" json:"name"`
	Description string  `gorm:"size:512" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductVariant carries a price override for a size/color option; zero
// means the base product price applies.
type ProductVariant struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProductID uint    `gorm:"index;not null" json:"productId"`
	Name      string  `gorm:"size:64;not null" json:"name"`
	Price     float64 `json:"price"`
}
