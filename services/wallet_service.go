package services

import (
	"errors"
	"fmt"

	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger references. Each names one business event; the unique index on
// wallet_entries.reference makes it move money at most once.
func OrderPaymentRef(orderID uint) string { return fmt.Sprintf("order:%d:payment", orderID) }
func OrderRefundRef(orderID uint) string  { return fmt.Sprintf("order:%d:refund", orderID) }
func OrderPayoutRef(orderID uint) string  { return fmt.Sprintf("order:%d:payout", orderID) }
func DepositRef(txnRef string) string     { return "deposit:" + txnRef }

type WalletService struct {
	DB         *gorm.DB
	Repo       *repository.WalletRepository
	Principals *repository.PrincipalRepository
}

func NewWalletService(db *gorm.DB, repo *repository.WalletRepository, principals *repository.PrincipalRepository) *WalletService {
	return &WalletService{DB: db, Repo: repo, Principals: principals}
}

// Apply adds delta to the principal's balance inside tx and records the entry.
// It returns applied=false when reference was already recorded.
func (s *WalletService) Apply(tx *gorm.DB, principalID uint, delta decimal.Decimal, kind entity.WalletEntryKind, reference string) (bool, error) {
	exists, err := s.Repo.EntryExists(tx, reference)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	p, err := s.Principals.GetForUpdate(tx, principalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("%w: id %d", ErrPrincipalNotFound, principalID)
	}
	if err != nil {
		return false, err
	}
	if !p.CanHoldWallet() {
		return false, fmt.Errorf("%w: kind %s", ErrWalletNotAllowed, p.Kind)
	}

	balance := p.Balance.Add(delta)
	if balance.IsNegative() {
		return false, ErrInsufficientBalance
	}

	err = s.Repo.CreateEntry(tx, &entity.WalletEntry{
		PrincipalID:  principalID,
		Kind:         kind,
		Amount:       delta,
		BalanceAfter: balance,
		Reference:    reference,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.Repo.SetBalance(tx, principalID, balance); err != nil {
		return false, err
	}
	return true, nil
}

func (s *WalletService) Credit(tx *gorm.DB, principalID uint, amount decimal.Decimal, kind entity.WalletEntryKind, reference string) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	return s.Apply(tx, principalID, amount, kind, reference)
}

func (s *WalletService) Debit(tx *gorm.DB, principalID uint, amount decimal.Decimal, kind entity.WalletEntryKind, reference string) (bool, error) {
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}
	return s.Apply(tx, principalID, amount.Neg(), kind, reference)
}

type WalletView struct {
	PrincipalID uint            `json:"principalId"`
	Balance     decimal.Decimal `json:"balance"`
}

func (s *WalletService) Balance(principalID uint) (*WalletView, error) {
	p, err := s.Principals.FindByID(principalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.CanHoldWallet() {
		return nil, ErrWalletNotAllowed
	}
	return &WalletView{PrincipalID: p.ID, Balance: p.Balance}, nil
}

func (s *WalletService) History(principalID uint, limit int) ([]entity.WalletEntry, error) {
	return s.Repo.ListEntries(principalID, limit)
}

// OrderEntries lists what one order moved on principalID's wallet.
func (s *WalletService) OrderEntries(principalID, orderID uint) ([]entity.WalletEntry, error) {
	return s.Repo.EntriesByReferencePrefix(s.DB, principalID, fmt.Sprintf("order:%d:", orderID))
}
