package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	gorm.Model
	OrderID uint  `gorm:"index;not null" json:"orderId"`
	Order   Order `json:"-"`

	FoodID   uint   `gorm:"not null" json:"foodId"`
	FoodName string `json:"foodName"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unitPrice"`
	Total     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total"`

	Toppings []OrderItemTopping `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"toppings"`
}

type OrderItemTopping struct {
	gorm.Model
	OrderItemID uint      `gorm:"index;not null" json:"orderItemId"`
	OrderItem   OrderItem `json:"-"`

	ToppingID   uint            `gorm:"not null" json:"toppingId"`
	ToppingName string          `json:"toppingName"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
}
