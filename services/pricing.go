package services

import (
	"fmt"
	"time"

	"github.com/konnn04/food-app-server/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PricedTopping struct {
	ToppingID uint
	Quantity  int
	Price     decimal.Decimal
}

// PricedLine is one cart or order line with prices already captured.
type PricedLine struct {
	FoodID    uint
	Quantity  int
	UnitPrice decimal.Decimal
	Toppings  []PricedTopping
}

// Total is quantity*unit price plus each topping's quantity*price. Topping
// quantities count for the whole line, not per unit.
func (l PricedLine) Total() decimal.Decimal {
	total := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	for _, t := range l.Toppings {
		total = total.Add(t.Price.Mul(decimal.NewFromInt(int64(t.Quantity))))
	}
	return total
}

type Quote struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	ApplicableTotal decimal.Decimal `json:"applicableTotal"`
	Discount        decimal.Decimal `json:"discount"`
	Payable         decimal.Decimal `json:"payable"`
	CouponCode      string          `json:"couponCode,omitempty"`
}

// Price computes the quote for lines of a cart bound to restaurantID.
// A nil coupon means no discount.
func Price(lines []PricedLine, coupon *entity.Coupon, restaurantID uint, now time.Time) (Quote, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	q := Quote{Subtotal: subtotal, ApplicableTotal: subtotal, Discount: decimal.Zero, Payable: subtotal}
	if coupon == nil {
		return q, nil
	}

	if err := checkCoupon(coupon, restaurantID, now); err != nil {
		return Quote{}, err
	}

	if allow := coupon.FoodIDs(); len(allow) > 0 {
		set := make(map[uint]struct{}, len(allow))
		for _, id := range allow {
			set[id] = struct{}{}
		}
		applicable := decimal.Zero
		for _, l := range lines {
			if _, ok := set[l.FoodID]; ok {
				applicable = applicable.Add(l.Total())
			}
		}
		q.ApplicableTotal = applicable
	}

	if coupon.MinOrderAmount != nil && q.ApplicableTotal.LessThan(*coupon.MinOrderAmount) {
		return Quote{}, fmt.Errorf("%w: order below minimum %s", ErrCouponNotApplicable, coupon.MinOrderAmount.StringFixed(2))
	}

	q.Discount = discountFor(coupon, q.ApplicableTotal)
	q.Payable = decimal.Max(subtotal.Sub(q.Discount), decimal.Zero)
	q.CouponCode = coupon.Code
	return q, nil
}

// checkCoupon rejects coupons that cannot apply at all, before any discount is computed.
func checkCoupon(c *entity.Coupon, restaurantID uint, now time.Time) error {
	switch {
	case !c.IsActive:
		return fmt.Errorf("%w: coupon is inactive", ErrCouponNotApplicable)
	case c.StartAt != nil && now.Before(*c.StartAt):
		return fmt.Errorf("%w: coupon is not valid yet", ErrCouponNotApplicable)
	case c.EndAt != nil && now.After(*c.EndAt):
		return fmt.Errorf("%w: coupon has expired", ErrCouponNotApplicable)
	case c.RestaurantID != nil && *c.RestaurantID != restaurantID:
		return fmt.Errorf("%w: coupon belongs to another restaurant", ErrCouponNotApplicable)
	}
	return nil
}

func discountFor(c *entity.Coupon, applicable decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case entity.DiscountPercent:
		d = applicable.Mul(c.DiscountValue).Div(hundred).Round(2)
	default:
		d = c.DiscountValue
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	if c.MaxDiscountAmount != nil && d.GreaterThan(*c.MaxDiscountAmount) {
		d = *c.MaxDiscountAmount
	}
	if d.GreaterThan(applicable) {
		d = applicable
	}
	return d
}
