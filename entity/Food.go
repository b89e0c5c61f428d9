package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Food struct {
	gorm.Model
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	Available bool            `gorm:"not null" json:"available"`

	RestaurantID uint       `gorm:"index" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Toppings []Topping `gorm:"many2many:food_toppings;" json:"toppings,omitempty"`
}
