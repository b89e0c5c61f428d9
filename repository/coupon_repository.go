package repository

import (
	"strings"

	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
)

type CouponRepository struct {
	DB *gorm.DB
}

func NewCouponRepository(db *gorm.DB) *CouponRepository {
	return &CouponRepository{DB: db}
}

func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FindByCode loads a coupon with its food allow-list. Activity and validity
// windows are checked by the caller.
func (r *CouponRepository) FindByCode(tx *gorm.DB, code string) (*entity.Coupon, error) {
	var c entity.Coupon
	err := tx.Preload("Foods").
		Where("code = ?", NormalizeCouponCode(code)).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CouponRepository) Create(c *entity.Coupon) error {
	c.Code = NormalizeCouponCode(c.Code)
	return r.DB.Create(c).Error
}
