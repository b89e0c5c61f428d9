package repository

import (
	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func (r *RestaurantRepository) FindByID(tx *gorm.DB, id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	if err := tx.First(&rest, id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

// IDsOperatedBy lists restaurants an owner owns or a staff member works at.
func (r *RestaurantRepository) IDsOperatedBy(p *entity.Principal) ([]uint, error) {
	var ids []uint
	switch p.Kind {
	case entity.KindOwner:
		err := r.DB.Model(&entity.Restaurant{}).Where("owner_id = ?", p.ID).Pluck("id", &ids).Error
		return ids, err
	case entity.KindStaff:
		if p.RestaurantID != nil {
			ids = append(ids, *p.RestaurantID)
		}
	}
	return ids, nil
}
