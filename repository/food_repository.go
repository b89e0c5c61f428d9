package repository

import (
	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
)

// FoodRepository is the read side of the catalog: food by id with price and availability.
type FoodRepository struct {
	DB *gorm.DB
}

func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{DB: db}
}

func (r *FoodRepository) GetFood(tx *gorm.DB, id uint) (*entity.Food, error) {
	var f entity.Food
	if err := tx.Preload("Toppings").First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// FoodsByIDs returns the foods that still exist, keyed by id.
func (r *FoodRepository) FoodsByIDs(tx *gorm.DB, ids []uint) (map[uint]entity.Food, error) {
	out := make(map[uint]entity.Food, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var foods []entity.Food
	if err := tx.Preload("Toppings").Where("id IN ?", ids).Find(&foods).Error; err != nil {
		return nil, err
	}
	for _, f := range foods {
		out[f.ID] = f
	}
	return out, nil
}
