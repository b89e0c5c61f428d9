package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/vnpay"
	"github.com/konnn04/food-app-server/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	ProviderVNPay = "vnpay"

	PayMethodWallet = "wallet"
	PayMethodVNPay  = "vnpay"
)

// Provider callback response codes.
const (
	RspConfirmed        = "00"
	RspTxnNotFound      = "01"
	RspAlreadyFailed    = "02"
	RspInvalidAmount    = "04"
	RspInvalidSignature = "97"
	RspUnknownError     = "99"
)

const tracerName = "github.com/konnn04/food-app-server/services"

// Gateway is the payment provider boundary. *vnpay.Client satisfies it.
type Gateway interface {
	BuildPaymentURL(req vnpay.PaymentRequest) (string, error)
	Verify(params url.Values) bool
}

type SettlementService struct {
	DB         *gorm.DB
	Orders     *OrderService
	Payments   *repository.PaymentRepository
	Principals *repository.PrincipalRepository
	Wallet     *WalletService
	Gateway    Gateway
	Log        *zap.Logger
	Now        func() time.Time
	NewTxnRef  func() string

	inflight singleflight.Group
}

func NewSettlementService(
	db *gorm.DB,
	orders *OrderService,
	payments *repository.PaymentRepository,
	principals *repository.PrincipalRepository,
	wallet *WalletService,
	gateway Gateway,
	log *zap.Logger,
) *SettlementService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettlementService{
		DB: db, Orders: orders, Payments: payments, Principals: principals, Wallet: wallet,
		Gateway: gateway, Log: log, Now: time.Now, NewTxnRef: newTxnRef,
	}
}

// newTxnRef is 20 hex characters of a random UUID.
func newTxnRef() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

type PayResult struct {
	Method        string          `json:"method"`
	Order         *entity.Order   `json:"order"`
	WalletBalance decimal.Decimal `json:"walletBalance"`

	// Set on the gateway path only.
	TxnRef        string          `json:"txnRef,omitempty"`
	GatewayAmount decimal.Decimal `json:"gatewayAmount,omitempty"`
	PaymentURL    string          `json:"paymentUrl,omitempty"`
}

// PayOrder settles a pending order from the wallet when the balance covers it.
// Otherwise it opens a gateway transaction for the shortfall and leaves the
// wallet untouched.
func (s *SettlementService) PayOrder(ctx context.Context, customerID, orderID uint, clientIP string) (*PayResult, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "settlement.PayOrder")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", int64(orderID)))

	var out *PayResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, err := s.Orders.Repo.GetOrderForUpdate(tx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if o.CustomerID != customerID {
			return ErrOrderNotFound
		}
		if o.Status != entity.OrderPending {
			return fmt.Errorf("%w: order is %s", ErrOrderNotPayable, o.Status)
		}

		customer, err := s.Principals.GetForUpdate(tx, customerID)
		if err != nil {
			return err
		}

		if customer.Balance.GreaterThanOrEqual(o.TotalAmount) {
			if err := s.settleFromWallet(tx, o, PayMethodWallet, "", ""); err != nil {
				return err
			}
			out = &PayResult{Method: PayMethodWallet, Order: o, WalletBalance: customer.Balance.Sub(o.TotalAmount)}
			return nil
		}

		remainder := o.TotalAmount
		if customer.Balance.IsPositive() {
			remainder = o.TotalAmount.Sub(customer.Balance)
		}
		txn, payURL, err := s.openTxn(tx, customerID, entity.PurposeOrderPayment, &o.ID, remainder, clientIP,
			fmt.Sprintf("Pay order %d", o.ID))
		if err != nil {
			return err
		}
		out = &PayResult{
			Method: PayMethodVNPay, Order: o, WalletBalance: customer.Balance,
			TxnRef: txn.TxnRef, GatewayAmount: remainder, PaymentURL: payURL,
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if out.Method == PayMethodWallet {
		s.Log.Info("order paid from wallet", zap.Uint("order_id", orderID), zap.Uint("customer_id", customerID))
		s.Orders.notify(out.Order)
	} else {
		s.Log.Info("gateway payment opened",
			zap.Uint("order_id", orderID),
			zap.String("txn_ref", out.TxnRef),
			zap.String("amount", out.GatewayAmount.StringFixed(2)),
		)
	}
	return out, nil
}

// settleFromWallet debits the order total, marks the order paid and writes its invoice, all inside tx.
func (s *SettlementService) settleFromWallet(tx *gorm.DB, o *entity.Order, method, thirdPartyCode, thirdPartyName string) error {
	if o.TotalAmount.IsPositive() {
		applied, err := s.Wallet.Debit(tx, o.CustomerID, o.TotalAmount, entity.EntryOrderPayment, OrderPaymentRef(o.ID))
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: order %d was already charged", ErrOrderNotPayable, o.ID)
		}
	}
	if err := s.Orders.moveStatus(tx, o, entity.OrderPaid, nil); err != nil {
		return err
	}
	return s.Payments.CreateInvoice(tx, &entity.Invoice{
		OrderID:        o.ID,
		PaymentMethod:  method,
		ThirdPartyCode: thirdPartyCode,
		ThirdPartyName: thirdPartyName,
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		Total:          o.TotalAmount,
	})
}

func (s *SettlementService) openTxn(tx *gorm.DB, principalID uint, purpose entity.TxnPurpose, orderID *uint, amount decimal.Decimal, clientIP, info string) (*entity.DepositTransaction, string, error) {
	ref := s.NewTxnRef()
	payURL, err := s.Gateway.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    ref,
		Amount:    amount,
		IPAddr:    clientIP,
		OrderInfo: info,
	})
	if err != nil {
		if errors.Is(err, vnpay.ErrFractionalAmount) || errors.Is(err, vnpay.ErrNonPositive) {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		return nil, "", err
	}

	raw, _ := json.Marshal(map[string]any{
		"type":     purpose,
		"order_id": orderID,
		"amount":   amount.StringFixed(2),
		"ip":       clientIP,
	})
	txn := &entity.DepositTransaction{
		Provider:    ProviderVNPay,
		TxnRef:      ref,
		PrincipalID: principalID,
		Purpose:     purpose,
		OrderID:     orderID,
		Amount:      amount,
		Status:      entity.TxnPending,
		RawRequest:  string(raw),
	}
	if err := s.Payments.CreateTxn(tx, txn); err != nil {
		return nil, "", err
	}
	return txn, payURL, nil
}

type DepositResult struct {
	TxnRef     string          `json:"txnRef"`
	Amount     decimal.Decimal `json:"amount"`
	PaymentURL string          `json:"paymentUrl"`
}

// CreateDeposit opens a wallet top-up through the gateway.
func (s *SettlementService) CreateDeposit(ctx context.Context, principalID uint, amount decimal.Decimal, clientIP string) (*DepositResult, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "settlement.CreateDeposit")
	defer span.End()

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	var out *DepositResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.Principals.GetForUpdate(tx, principalID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPrincipalNotFound
		}
		if err != nil {
			return err
		}
		if !p.CanHoldWallet() {
			return ErrWalletNotAllowed
		}
		txn, payURL, err := s.openTxn(tx, principalID, entity.PurposeDeposit, nil, amount, clientIP, "Deposit to wallet")
		if err != nil {
			return err
		}
		out = &DepositResult{TxnRef: txn.TxnRef, Amount: amount, PaymentURL: payURL}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// CallbackResult doubles as the provider acknowledgement body.
type CallbackResult struct {
	RspCode string           `json:"RspCode"`
	Message string           `json:"Message"`
	TxnRef  string           `json:"txnRef,omitempty"`
	Status  entity.TxnStatus `json:"status,omitempty"`
	OrderID *uint            `json:"orderId,omitempty"`

	paidOrder *entity.Order
}

func (r CallbackResult) Confirmed() bool { return r.RspCode == RspConfirmed }

// HandleCallback processes a return redirect or an IPN. Both sources share the
// same path, so any arrival order or duplication ends in the same state.
func (s *SettlementService) HandleCallback(ctx context.Context, source string, params url.Values) CallbackResult {
	_, span := otel.Tracer(tracerName).Start(ctx, "settlement.HandleCallback")
	defer span.End()
	span.SetAttributes(attribute.String("callback.source", source))

	log := s.Log.With(zap.String("source", source), zap.String("txn_ref", params.Get("vnp_TxnRef")))

	if !s.Gateway.Verify(params) {
		log.Warn("callback signature rejected")
		span.SetStatus(codes.Error, "invalid signature")
		return CallbackResult{RspCode: RspInvalidSignature, Message: "Invalid signature"}
	}

	cb, err := vnpay.ParseCallback(params)
	switch {
	case errors.Is(err, vnpay.ErrMissingTxnRef):
		return CallbackResult{RspCode: RspTxnNotFound, Message: "Order not found"}
	case errors.Is(err, vnpay.ErrBadAmount):
		return CallbackResult{RspCode: RspInvalidAmount, Message: "Invalid amount", TxnRef: cb.TxnRef}
	case err != nil:
		return CallbackResult{RspCode: RspUnknownError, Message: "Unknown error"}
	}
	span.SetAttributes(attribute.String("txn.ref", cb.TxnRef))

	v, err, shared := s.inflight.Do(cb.TxnRef, func() (any, error) {
		res, err := s.settle(cb, params)
		if err != nil {
			return nil, err
		}
		log.Info("callback handled",
			zap.String("rsp_code", res.RspCode),
			zap.String("status", string(res.Status)),
			zap.String("provider_code", cb.ResponseCode),
		)
		if res.paidOrder != nil {
			s.Orders.notify(res.paidOrder)
		}
		return res, nil
	})
	if err != nil {
		log.Error("callback settlement failed", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return CallbackResult{RspCode: RspUnknownError, Message: "Unknown error", TxnRef: cb.TxnRef}
	}
	if shared {
		log.Debug("callback shared a result with a concurrent duplicate")
	}
	res := v.(CallbackResult)
	span.SetAttributes(attribute.String("callback.rsp_code", res.RspCode))
	return res
}

func (s *SettlementService) settle(cb vnpay.Callback, params url.Values) (CallbackResult, error) {
	res := CallbackResult{TxnRef: cb.TxnRef}
	raw := flatten(params)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		txn, err := s.Payments.GetTxnByRef(tx, cb.TxnRef)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			res.RspCode, res.Message = RspTxnNotFound, "Order not found"
			return nil
		}
		if err != nil {
			return err
		}
		res.OrderID = txn.OrderID
		res.Status = txn.Status

		switch txn.Status {
		case entity.TxnSuccess:
			res.RspCode, res.Message = RspConfirmed, "Order already confirmed"
			return nil
		case entity.TxnFailed:
			res.RspCode, res.Message = RspAlreadyFailed, "Order already failed"
			return nil
		}

		now := s.Now()
		if !cb.Amount.Equal(txn.Amount) {
			if _, err := s.Payments.ResolveTxn(tx, txn.ID, entity.TxnFailed, raw, now); err != nil {
				return err
			}
			res.Status = entity.TxnFailed
			res.RspCode, res.Message = RspInvalidAmount, "Invalid amount"
			return nil
		}

		if !cb.Succeeded() {
			if _, err := s.Payments.ResolveTxn(tx, txn.ID, entity.TxnFailed, raw, now); err != nil {
				return err
			}
			res.Status = entity.TxnFailed
			res.RspCode, res.Message = RspConfirmed, "Confirm Success"
			return nil
		}

		n, err := s.Payments.ResolveTxn(tx, txn.ID, entity.TxnSuccess, raw, now)
		if err != nil {
			return err
		}
		if n == 0 {
			res.RspCode, res.Message = RspConfirmed, "Order already confirmed"
			return nil
		}
		if _, err := s.Wallet.Credit(tx, txn.PrincipalID, txn.Amount, entity.EntryDeposit, DepositRef(txn.TxnRef)); err != nil {
			return err
		}
		res.Status = entity.TxnSuccess
		res.RspCode, res.Message = RspConfirmed, "Confirm Success"

		if txn.Purpose == entity.PurposeOrderPayment && txn.OrderID != nil {
			paid, err := s.settleOrderAfterDeposit(tx, txn)
			if err != nil {
				return err
			}
			res.paidOrder = paid
		}
		return nil
	})
	if err != nil {
		return CallbackResult{}, err
	}
	return res, nil
}

// settleOrderAfterDeposit pays the linked order once the deposit has landed.
// An order that is no longer pending or still not covered keeps the funds in the wallet.
func (s *SettlementService) settleOrderAfterDeposit(tx *gorm.DB, txn *entity.DepositTransaction) (*entity.Order, error) {
	o, err := s.Orders.Repo.GetOrderForUpdate(tx, *txn.OrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Status != entity.OrderPending || o.CustomerID != txn.PrincipalID {
		s.Log.Warn("deposit kept in wallet: order not payable",
			zap.Uint("order_id", o.ID), zap.String("status", string(o.Status)), zap.String("txn_ref", txn.TxnRef))
		return nil, nil
	}
	customer, err := s.Principals.GetForUpdate(tx, txn.PrincipalID)
	if err != nil {
		return nil, err
	}
	if customer.Balance.LessThan(o.TotalAmount) {
		s.Log.Warn("deposit kept in wallet: balance still short",
			zap.Uint("order_id", o.ID), zap.String("txn_ref", txn.TxnRef))
		return nil, nil
	}
	if err := s.settleFromWallet(tx, o, PayMethodVNPay, txn.TxnRef, "VNPay"); err != nil {
		return nil, err
	}
	return o, nil
}

// ExpireStale fails pending transactions older than ttl. A late success
// callback for an expired transaction is answered with RspAlreadyFailed.
func (s *SettlementService) ExpireStale(ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		return 0, nil
	}
	now := s.Now()
	var n int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.Payments.ExpirePending(tx, now.Add(-ttl), now)
		return err
	})
	return n, err
}

func (s *SettlementService) Transactions(principalID uint, limit int) ([]entity.DepositTransaction, error) {
	return s.Payments.ListTxnsForPrincipal(principalID, limit)
}

func flatten(params url.Values) string {
	m := make(map[string]string, len(params))
	for k := range params {
		m[k] = params.Get(k)
	}
	b, _ := json.Marshal(m)
	return string(b)
}
