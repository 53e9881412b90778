package model

import "time"

type PromoState string

const (
	PromoStateInactive PromoState = "inactive"
	PromoStateActive   PromoState = "active"
	PromoStateExpired  PromoState = "expired"
)

// PromoCode.State is cached from the date window. Reads must still treat a
// code whose EndDate has passed as expired even when the stored field says
// active; the sweep and the lazy flip both correct it.
type PromoCode struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Code            string     `gorm:"size:64;uniqueIndex;not null" json:"code"` // stored upper-case
	DiscountPercent float64    `gorm:"not null" json:"discountPercentage"`
	StartDate       time.Time  `gorm:"not null" json:"startDate"`
	EndDate         time.Time  `gorm:"not null" json:"endDate"`
	State           PromoState `gorm:"size:16;index;not null" json:"state"`
	AuthorID        uint       `gorm:"index" json:"authorId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
