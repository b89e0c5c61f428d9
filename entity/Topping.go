package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Topping struct {
	gorm.Model
	Name        string          `json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
	IsAvailable bool            `gorm:"not null" json:"isAvailable"`

	Foods []Food `gorm:"many2many:food_toppings;" json:"-"`
}
