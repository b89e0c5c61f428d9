package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PrincipalKind string

const (
	KindCustomer PrincipalKind = "customer"
	KindOwner    PrincipalKind = "owner"
	KindStaff    PrincipalKind = "staff"
	KindAdmin    PrincipalKind = "admin"
)

func (k PrincipalKind) Valid() bool {
	switch k {
	case KindCustomer, KindOwner, KindStaff, KindAdmin:
		return true
	}
	return false
}

// Principal is every account that can act in the system. Kind is the
// discriminant; capabilities are derived from it instead of a type hierarchy.
type Principal struct {
	gorm.Model
	Kind      PrincipalKind   `gorm:"size:20;not null;index" json:"kind"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Email     string          `gorm:"uniqueIndex" json:"email"`
	Phone     string          `json:"phone"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`

	// staff only: the restaurant the account works for
	RestaurantID *uint `json:"restaurantId,omitempty"`
}

func (p *Principal) CanHoldWallet() bool {
	return p.Kind == KindCustomer || p.Kind == KindOwner
}

func (p *Principal) CanOwnRestaurant() bool {
	return p.Kind == KindOwner
}

// CanOperate reports whether p may run the kitchen side of r's orders.
func (p *Principal) CanOperate(r *Restaurant) bool {
	if r == nil {
		return false
	}
	if p.CanOwnRestaurant() {
		return r.OwnerID == p.ID
	}
	return p.Kind == KindStaff && p.RestaurantID != nil && *p.RestaurantID == r.ID
}
