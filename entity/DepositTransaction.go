package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TxnStatus string

const (
	TxnPending TxnStatus = "pending"
	TxnSuccess TxnStatus = "success"
	TxnFailed  TxnStatus = "failed"
)

type TxnPurpose string

const (
	PurposeDeposit      TxnPurpose = "deposit"
	PurposeOrderPayment TxnPurpose = "order_payment"
)

// DepositTransaction is one round-trip to the payment provider. TxnRef is the
// correlation key sent out and echoed back by the provider callbacks.
type DepositTransaction struct {
	gorm.Model
	Provider string `gorm:"size:20;not null" json:"provider"`
	TxnRef   string `gorm:"size:64;uniqueIndex;not null" json:"txnRef"`

	PrincipalID uint      `gorm:"index;not null" json:"principalId"`
	Principal   Principal `json:"-"`

	Purpose TxnPurpose `gorm:"size:20;not null;default:deposit" json:"purpose"`
	OrderID *uint      `gorm:"index" json:"orderId,omitempty"`

	Amount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status TxnStatus       `gorm:"size:20;not null;index;default:pending" json:"status"`

	RawRequest  string     `gorm:"type:text" json:"-"`
	RawCallback string     `gorm:"type:text" json:"-"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}
