package entity

import (
	"gorm.io/gorm"
)

type CancelReason struct {
	gorm.Model
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Description string `gorm:"not null" json:"description"`
}
