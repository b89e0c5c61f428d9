package repository

import (
	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PrincipalRepository reads principals and writes wallet balances.
type PrincipalRepository struct {
	DB *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{DB: db}
}

func (r *PrincipalRepository) FindByID(id uint) (*entity.Principal, error) {
	var p entity.Principal
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetForUpdate reads a principal inside tx, row-locked where the driver supports it.
func (r *PrincipalRepository) GetForUpdate(tx *gorm.DB, id uint) (*entity.Principal, error) {
	var p entity.Principal
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PrincipalRepository) Create(p *entity.Principal) error {
	return r.DB.Create(p).Error
}
