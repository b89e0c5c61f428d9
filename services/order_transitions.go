package services

import (
	"errors"
	"fmt"

	"github.com/konnn04/food-app-server/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transitions is the complete lifecycle. pending→paid is reserved for settlement.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderPending:  {entity.OrderPaid},
	entity.OrderPaid:     {entity.OrderAccepted},
	entity.OrderAccepted: {entity.OrderDone, entity.OrderCancelled},
	entity.OrderDone:     {entity.OrderCompleted, entity.OrderCancelled},
}

func CanTransition(from, to entity.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// timestampColumn names the column stamped when an order enters a status.
func timestampColumn(to entity.OrderStatus) string {
	switch to {
	case entity.OrderPaid:
		return "paid_at"
	case entity.OrderAccepted:
		return "accepted_at"
	case entity.OrderDone:
		return "done_at"
	case entity.OrderCompleted:
		return "completed_at"
	case entity.OrderCancelled:
		return "cancelled_at"
	}
	return ""
}

// moveStatus applies one guarded transition inside tx and updates o in place.
func (s *OrderService) moveStatus(tx *gorm.DB, o *entity.Order, to entity.OrderStatus, extra map[string]any) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, o.Status, to)
	}
	now := s.Now()
	updates := map[string]any{}
	for k, v := range extra {
		updates[k] = v
	}
	if col := timestampColumn(to); col != "" {
		updates[col] = now
	}
	affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, o.Status, to, updates)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d changed concurrently", ErrInvalidTransition, o.ID)
	}
	o.Status = to
	return nil
}

// loadForStaff locks the order and checks the actor operates its restaurant.
func (s *OrderService) loadForStaff(tx *gorm.DB, actor *entity.Principal, orderID uint) (*entity.Order, *entity.Restaurant, error) {
	o, err := s.Repo.GetOrderForUpdate(tx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	rest, err := s.RestRepo.FindByID(tx, o.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanOperate(rest) {
		return nil, nil, ErrForbidden
	}
	return o, rest, nil
}

func (s *OrderService) staffMove(actor *entity.Principal, orderID uint, to entity.OrderStatus) (*entity.Order, error) {
	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, _, err := s.loadForStaff(tx, actor, orderID)
		if err != nil {
			return err
		}
		if err := s.moveStatus(tx, o, to, nil); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(order)
	return order, nil
}

// ----- Staff actions -----

func (s *OrderService) Accept(actor *entity.Principal, orderID uint) (*entity.Order, error) {
	return s.staffMove(actor, orderID, entity.OrderAccepted)
}

func (s *OrderService) MarkDone(actor *entity.Principal, orderID uint) (*entity.Order, error) {
	return s.staffMove(actor, orderID, entity.OrderDone)
}

type CompleteResult struct {
	Order         *entity.Order `json:"order"`
	OwnerCredited bool          `json:"ownerCredited"`
}

// Complete commits done→completed, then pays the restaurant owner. A failed
// payout never undoes the completion; it is logged and retried by ReconcilePayouts.
func (s *OrderService) Complete(actor *entity.Principal, orderID uint) (*CompleteResult, error) {
	var (
		order *entity.Order
		rest  *entity.Restaurant
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, r, err := s.loadForStaff(tx, actor, orderID)
		if err != nil {
			return err
		}
		if err := s.moveStatus(tx, o, entity.OrderCompleted, nil); err != nil {
			return err
		}
		order, rest = o, r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(order)

	credited := true
	if err := s.payOwner(order, rest.OwnerID); err != nil {
		credited = false
		s.Log.Error("owner payout failed; needs reconciliation",
			zap.Uint("order_id", order.ID),
			zap.Uint("owner_id", rest.OwnerID),
			zap.String("amount", order.TotalAmount.StringFixed(2)),
			zap.Error(err),
		)
	}
	return &CompleteResult{Order: order, OwnerCredited: credited}, nil
}

func (s *OrderService) payOwner(o *entity.Order, ownerID uint) error {
	if !o.TotalAmount.IsPositive() {
		return nil
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		_, err := s.Wallet.Credit(tx, ownerID, o.TotalAmount, entity.EntryPayout, OrderPayoutRef(o.ID))
		return err
	})
}

type CancelIn struct {
	ReasonID *uint  `json:"reasonId"`
	Note     string `json:"note"`
}

// Cancel moves an accepted or done order to cancelled and refunds the
// customer's wallet in the same transaction.
func (s *OrderService) Cancel(actor *entity.Principal, orderID uint, in *CancelIn) (*entity.Order, error) {
	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		o, _, err := s.loadForStaff(tx, actor, orderID)
		if err != nil {
			return err
		}

		extra := map[string]any{"cancel_note": in.Note}
		if in.ReasonID != nil {
			if _, err := s.Repo.GetCancelReason(tx, *in.ReasonID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: id %d", ErrCancelReasonNotFound, *in.ReasonID)
				}
				return err
			}
			extra["cancel_reason_id"] = *in.ReasonID
			o.CancelReasonID = in.ReasonID
		}
		if err := s.moveStatus(tx, o, entity.OrderCancelled, extra); err != nil {
			return err
		}
		o.CancelNote = in.Note

		if o.TotalAmount.IsPositive() {
			if _, err := s.Wallet.Credit(tx, o.CustomerID, o.TotalAmount, entity.EntryRefund, OrderRefundRef(o.ID)); err != nil {
				return err
			}
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("order cancelled",
		zap.Uint("order_id", order.ID),
		zap.Uint("actor_id", actor.ID),
		zap.String("refund", order.TotalAmount.StringFixed(2)),
	)
	s.notify(order)
	return order, nil
}

// ReconcilePayouts credits owners for completed orders whose payout is missing.
func (s *OrderService) ReconcilePayouts(limit int) (int, error) {
	orders, err := s.Repo.CompletedWithoutPayout(limit)
	if err != nil {
		return 0, err
	}
	paid := 0
	for i := range orders {
		o := &orders[i]
		rest, err := s.RestRepo.FindByID(s.DB, o.RestaurantID)
		if err != nil {
			s.Log.Warn("payout reconcile: restaurant lookup failed", zap.Uint("order_id", o.ID), zap.Error(err))
			continue
		}
		if err := s.payOwner(o, rest.OwnerID); err != nil {
			s.Log.Error("payout reconcile failed", zap.Uint("order_id", o.ID), zap.Error(err))
			continue
		}
		paid++
	}
	return paid, nil
}
