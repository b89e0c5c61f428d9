package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	gorm.Model
	OrderID uint  `gorm:"uniqueIndex;not null" json:"orderId"`
	Order   Order `json:"-"`

	PaymentMethod  string `gorm:"size:50;not null" json:"paymentMethod"` // wallet | vnpay
	ThirdPartyCode string `json:"thirdPartyCode,omitempty"`
	ThirdPartyName string `json:"thirdPartyName,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"discount"`
	Total    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`
}
