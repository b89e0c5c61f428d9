package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is history: it is never deleted and TotalAmount is fixed at checkout.
type Order struct {
	gorm.Model
	CustomerID uint      `gorm:"index;not null" json:"customerId"`
	Customer   Principal `json:"-"`

	RestaurantID uint       `gorm:"index;not null" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"subtotal"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"totalAmount"`

	Status OrderStatus `gorm:"size:20;not null;index;default:pending" json:"status"`

	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryPhone   string `json:"deliveryPhone"`
	DeliveryNote    string `json:"deliveryNote"`

	CouponID   *uint  `json:"couponId,omitempty"`
	CouponCode string `json:"couponCode,omitempty"`

	PaidAt      *time.Time `json:"paidAt,omitempty"`
	AcceptedAt  *time.Time `json:"acceptedAt,omitempty"`
	DoneAt      *time.Time `json:"doneAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	CancelReasonID *uint         `json:"cancelReasonId,omitempty"`
	CancelReason   *CancelReason `json:"cancelReason,omitempty"`
	CancelNote     string        `json:"cancelNote,omitempty"`

	Items []OrderItem `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}
