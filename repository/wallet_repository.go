package repository

import (
	"github.com/konnn04/food-app-server/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletRepository struct {
	DB *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{DB: db}
}

func (r *WalletRepository) EntryExists(tx *gorm.DB, reference string) (bool, error) {
	var cnt int64
	if err := tx.Model(&entity.WalletEntry{}).Where("reference = ?", reference).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *WalletRepository) CreateEntry(tx *gorm.DB, e *entity.WalletEntry) error {
	return tx.Create(e).Error
}

func (r *WalletRepository) SetBalance(tx *gorm.DB, principalID uint, balance decimal.Decimal) error {
	return tx.Model(&entity.Principal{}).Where("id = ?", principalID).Update("balance", balance).Error
}

func (r *WalletRepository) ListEntries(principalID uint, limit int) ([]entity.WalletEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []entity.WalletEntry
	err := r.DB.Where("principal_id = ?", principalID).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// EntriesByReferencePrefix lists principalID's entries whose reference starts with prefix, oldest first.
func (r *WalletRepository) EntriesByReferencePrefix(tx *gorm.DB, principalID uint, prefix string) ([]entity.WalletEntry, error) {
	var out []entity.WalletEntry
	err := tx.Where("principal_id = ? AND reference LIKE ?", principalID, prefix+"%").Order("id").Find(&out).Error
	return out, err
}
