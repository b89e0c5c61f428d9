package entity

import (
	"gorm.io/gorm"
)

// Cart is created lazily per customer and cleared in place, never deleted.
// RestaurantID stays nil until the first item binds it.
type Cart struct {
	gorm.Model
	CustomerID   uint      `gorm:"uniqueIndex;not null" json:"customerId"`
	Customer     Principal `json:"-"`
	RestaurantID *uint     `json:"restaurantId"`

	Items []CartItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) BoundTo(restaurantID uint) bool {
	return c.RestaurantID != nil && *c.RestaurantID == restaurantID
}
