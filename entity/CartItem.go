package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartItem struct {
	gorm.Model
	CartID uint `gorm:"index;not null" json:"cartId"`
	Cart   Cart `json:"-"`

	FoodID uint `gorm:"not null" json:"foodId"`
	Food   Food `json:"-"`

	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"unitPrice"` // snapshot at add time

	Toppings []CartItemTopping `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"toppings"`
}

type CartItemTopping struct {
	gorm.Model
	CartItemID uint     `gorm:"index;not null" json:"cartItemId"`
	CartItem   CartItem `json:"-"`

	ToppingID uint    `gorm:"not null" json:"toppingId"`
	Topping   Topping `json:"-"`

	Quantity int             `gorm:"not null;default:1" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
}
