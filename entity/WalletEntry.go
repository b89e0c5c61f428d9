package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WalletEntryKind string

const (
	EntryDeposit      WalletEntryKind = "deposit"
	EntryOrderPayment WalletEntryKind = "order_payment"
	EntryRefund       WalletEntryKind = "refund"
	EntryPayout       WalletEntryKind = "payout"
)

// WalletEntry is one applied balance mutation. Reference is unique so the
// same business event can never move money twice.
type WalletEntry struct {
	gorm.Model
	PrincipalID  uint            `gorm:"index;not null" json:"principalId"`
	Kind         WalletEntryKind `gorm:"size:20;not null" json:"kind"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balanceAfter"`
	Reference    string          `gorm:"size:100;uniqueIndex;not null" json:"reference"`
}
