package model

import "time"

// Purchase is the template-marketplace counterpart of Order. The template
// fields are copied at purchase-initiation time; editing or deleting the
// source template afterwards must not change what the buyer downloads.
type Purchase struct {
	ID string `gorm:"primaryKey;size:36" json:"id"` // uuid

	BuyerID    *uint  `gorm:"index" json:"buyerId,omitempty"`
	BuyerEmail string `gorm:"size:128" json:"buyerEmail"`

	TemplateID    uint    `gorm:"index;not null" json:"templateId"`
	TemplateName  string  `gorm:"size:128;not null" json:"templateName"`
	TemplatePrice float64 `gorm:"not null" json:"templatePrice"`
	TemplateFile  string  `gorm:"size:256;not null" json:"-"`

	PaymentStatus  PaymentStatus `gorm:"size:16;index;not null" json:"paymentStatus"`
	GatewayOrderID int64         `gorm:"index" json:"gatewayOrderId,omitempty"`
	GatewayTxnID   int64         `json:"gatewayTxnId,omitempty"`

	Downloads    int `gorm:"not null;default:0" json:"downloads"`
	MaxDownloads int `gorm:"not null;default:5" json:"maxDownloads"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Template struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:128;not null" json:"name"`
	Description string  `gorm:"size:512" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	FileKey     string  `gorm:"size:256;not null" json:"-"`
	AuthorID    uint    `gorm:"index" json:"authorId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
