package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

type Coupon struct {
	gorm.Model
	Code          string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `gorm:"size:20;not null" json:"discountType"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"discountValue"`

	MinOrderAmount    *decimal.Decimal `gorm:"type:decimal(20,2)" json:"minOrderAmount,omitempty"`
	MaxDiscountAmount *decimal.Decimal `gorm:"type:decimal(20,2)" json:"maxDiscountAmount,omitempty"`

	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`
	IsActive bool       `gorm:"not null" json:"isActive"`

	// nil = any restaurant
	RestaurantID *uint `json:"restaurantId,omitempty"`

	// empty = whole order
	Foods []Food `gorm:"many2many:coupon_foods;" json:"-"`
}

func (c *Coupon) FoodIDs() []uint {
	ids := make([]uint, 0, len(c.Foods))
	for _, f := range c.Foods {
		ids = append(ids, f.ID)
	}
	return ids
}
