package repository

import (
	"time"

	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository stores gateway transactions and invoices.
type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) CreateTxn(tx *gorm.DB, t *entity.DepositTransaction) error {
	return tx.Create(t).Error
}

func (r *PaymentRepository) GetTxnByRef(tx *gorm.DB, txnRef string) (*entity.DepositTransaction, error) {
	var t entity.DepositTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("txn_ref = ?", txnRef).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResolveTxn moves a pending transaction to a final status. Zero rows affected
// means another callback resolved it first.
func (r *PaymentRepository) ResolveTxn(tx *gorm.DB, id uint, to entity.TxnStatus, rawCallback string, at time.Time) (int64, error) {
	res := tx.Model(&entity.DepositTransaction{}).
		Where("id = ? AND status = ?", id, entity.TxnPending).
		Updates(map[string]any{
			"status":       to,
			"raw_callback": rawCallback,
			"resolved_at":  at,
		})
	return res.RowsAffected, res.Error
}

// ExpirePending fails every pending transaction created before cutoff.
func (r *PaymentRepository) ExpirePending(tx *gorm.DB, cutoff, at time.Time) (int64, error) {
	res := tx.Model(&entity.DepositTransaction{}).
		Where("status = ? AND created_at < ?", entity.TxnPending, cutoff).
		Updates(map[string]any{
			"status":      entity.TxnFailed,
			"resolved_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *PaymentRepository) ListTxnsForPrincipal(principalID uint, limit int) ([]entity.DepositTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []entity.DepositTransaction
	err := r.DB.Where("principal_id = ?", principalID).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *PaymentRepository) CreateInvoice(tx *gorm.DB, inv *entity.Invoice) error {
	return tx.Create(inv).Error
}

func (r *PaymentRepository) GetInvoiceByOrder(orderID uint) (*entity.Invoice, error) {
	var inv entity.Invoice
	if err := r.DB.Where("order_id = ?", orderID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}
