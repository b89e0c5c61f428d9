package entity

import (
	"gorm.io/gorm"
)

type Restaurant struct {
	gorm.Model
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `gorm:"not null" json:"isActive"`

	OwnerID uint      `gorm:"index" json:"ownerId"`
	Owner   Principal `json:"-"`

	Foods []Food `json:"-"`
}
