package services

import (
	"context"
	"testing"

	"github.com/konnn04/food-app-server/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]entity.OrderStatus{
		{entity.OrderPending, entity.OrderPaid},
		{entity.OrderPaid, entity.OrderAccepted},
		{entity.OrderAccepted, entity.OrderDone},
		{entity.OrderAccepted, entity.OrderCancelled},
		{entity.OrderDone, entity.OrderCompleted},
		{entity.OrderDone, entity.OrderCancelled},
	}
	all := []entity.OrderStatus{
		entity.OrderPending, entity.OrderPaid, entity.OrderAccepted,
		entity.OrderDone, entity.OrderCompleted, entity.OrderCancelled,
	}
	isAllowed := func(from, to entity.OrderStatus) bool {
		for _, p := range allowed {
			if p[0] == from && p[1] == to {
				return true
			}
		}
		return false
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equalf(t, isAllowed(from, to), CanTransition(from, to), "%s → %s", from, to)
		}
	}
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.customer, f.pho, 2, ToppingIn{ToppingID: f.egg.ID})
	f.addToCart(t, f.customer, f.tra, 1)

	o, err := f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "1 Le Loi", Phone: "0900000000", Note: "no onion"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, f.rest.ID, o.RestaurantID)
	assertMoney(t, 110000, o.Subtotal)
	assertMoney(t, 110000, o.TotalAmount)

	detail, err := f.orders.DetailForCustomer(f.customer.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Pho bo", detail.Items[0].FoodName)
	assertMoney(t, 105000, detail.Items[0].Total)
	require.Len(t, detail.Items[0].Toppings, 1)
	assert.Equal(t, "Egg", detail.Items[0].Toppings[0].ToppingName)
	assert.Equal(t, "no onion", detail.DeliveryNote)

	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.RestaurantID)

	assert.Equal(t, []entity.OrderStatus{entity.OrderPending}, f.notes.statuses(o.ID))
}

func TestCheckoutWithCoupon(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cart.CouponRepo.Create(&entity.Coupon{
		Code: "TEN", DiscountType: entity.DiscountPercent, DiscountValue: d(10),
		MaxDiscountAmount: ptr(d(8000)), IsActive: true,
	}))
	f.addToCart(t, f.customer, f.pho, 2)

	o, err := f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "a", Phone: "p", CouponCode: "ten"})
	require.NoError(t, err)
	assertMoney(t, 100000, o.Subtotal)
	assertMoney(t, 8000, o.Discount)
	assertMoney(t, 92000, o.TotalAmount)
	assert.Equal(t, "TEN", o.CouponCode)
	require.NotNil(t, o.CouponID)
}

func TestCheckoutIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.customer, f.pho, 1)
	f.addToCart(t, f.customer, f.tra, 1)

	_, err := f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "a", Phone: "p", CouponCode: "MISSING"})
	assert.ErrorIs(t, err, ErrCouponNotFound)

	require.NoError(t, f.db.Model(&entity.Food{}).Where("id = ?", f.tra.ID).Update("available", false).Error)
	_, err = f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "a", Phone: "p"})
	assert.ErrorIs(t, err, ErrCartInconsistent)

	var orders int64
	require.NoError(t, f.db.Model(&entity.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, v.Items, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "a", Phone: "p"})
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestOrderTotalSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t, f.customer, 1)

	require.NoError(t, f.db.Model(&entity.Food{}).Where("id = ?", f.pho.ID).Update("price", d(99000)).Error)

	got := f.reload(t, o.ID)
	assertMoney(t, 50000, got.TotalAmount)
	detail, err := f.orders.DetailForCustomer(f.customer.ID, o.ID)
	require.NoError(t, err)
	assertMoney(t, 50000, detail.Items[0].UnitPrice)
}

func TestCartKeepsPriceCapturedAtAdd(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.customer, f.pho, 1)
	require.NoError(t, f.db.Model(&entity.Food{}).Where("id = ?", f.pho.ID).Update("price", d(60000)).Error)

	o, err := f.orders.CreateFromCart(f.customer.ID, &CheckoutIn{Address: "a", Phone: "p"})
	require.NoError(t, err)
	assertMoney(t, 50000, o.TotalAmount)
}

func TestCartAddAfterPriceChangeOpensNewLine(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	require.NoError(t, f.db.Model(&entity.Food{}).Where("id = ?", f.pho.ID).Update("price", d(60000)).Error)

	v := f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	require.Len(t, v.Items, 2)
	assertMoney(t, 50000, v.Items[0].UnitPrice)
	assertMoney(t, 60000, v.Items[1].UnitPrice)
	assertMoney(t, 120000, v.Subtotal)

	// a topping price change splits the line too
	require.NoError(t, f.db.Model(&entity.Topping{}).Where("id = ?", f.egg.ID).Update("price", d(7000)).Error)
	v = f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	require.Len(t, v.Items, 3)
	assertMoney(t, 7000, v.Items[2].Toppings[0].Price)

	// same prices as the newest line merge into it
	v = f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	require.Len(t, v.Items, 3)
	assert.Equal(t, 2, v.Items[2].Quantity)
	assertMoney(t, 254000, v.Subtotal)
}

func TestOrderDetailIsPrivate(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t, f.customer, 1)

	_, err := f.orders.DetailForCustomer(f.other.ID, o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.DetailForStaff(f.stranger, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.orders.DetailForStaff(f.staff, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	list, err := f.orders.ListForCustomer(f.customer.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = f.orders.ListForCustomer(f.other.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIllegalTransitionLeavesStatus(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t, f.customer, 1)

	_, err := f.orders.Accept(f.owner, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.orders.MarkDone(f.owner, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.orders.Cancel(f.owner, o.ID, &CancelIn{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.orders.Complete(f.owner, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, entity.OrderPending, f.reload(t, o.ID).Status)
}

func TestStaffActionsRequireOperator(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.customer, 1)

	for _, actor := range []*entity.Principal{f.stranger, f.customer} {
		_, err := f.orders.Accept(actor, o.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	}
	_, err := f.orders.ListForRestaurant(f.stranger, f.rest.ID, nil, 1, 20)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.Accept(f.owner, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	assert.Equal(t, entity.OrderPaid, f.reload(t, o.ID).Status)
}

func TestOrderLifecyclePaysOwner(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.customer, 2)
	assertMoney(t, 0, f.balance(t, f.customer))

	_, err := f.orders.Accept(f.staff, o.ID)
	require.NoError(t, err)
	_, err = f.orders.MarkDone(f.staff, o.ID)
	require.NoError(t, err)
	res, err := f.orders.Complete(f.owner, o.ID)
	require.NoError(t, err)
	assert.True(t, res.OwnerCredited)
	assert.Equal(t, entity.OrderCompleted, res.Order.Status)

	assertMoney(t, 100000, f.balance(t, f.owner))
	assert.EqualValues(t, 1, f.entriesWithRef(t, OrderPayoutRef(o.ID)))

	got := f.reload(t, o.ID)
	assert.NotNil(t, got.PaidAt)
	assert.NotNil(t, got.AcceptedAt)
	assert.NotNil(t, got.DoneAt)
	assert.NotNil(t, got.CompletedAt)

	assert.Equal(t, []entity.OrderStatus{
		entity.OrderPending, entity.OrderPaid, entity.OrderAccepted, entity.OrderDone, entity.OrderCompleted,
	}, f.notes.statuses(o.ID))

	// completed is terminal
	_, err = f.orders.Cancel(f.owner, o.ID, &CancelIn{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assertMoney(t, 100000, f.balance(t, f.owner))

	list, err := f.orders.ListForRestaurant(f.owner, f.rest.ID, ptr(entity.OrderCompleted), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "customer", list.Items[0].CustomerName)
}

func TestCompleteKeepsStatusWhenPayoutFails(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.customer, 1)
	_, err := f.orders.Accept(f.staff, o.ID)
	require.NoError(t, err)
	_, err = f.orders.MarkDone(f.staff, o.ID)
	require.NoError(t, err)

	// staff accounts cannot hold a wallet, so the payout is rejected
	setOwner := func(id uint) {
		require.NoError(t, f.db.Model(&entity.Restaurant{}).Where("id = ?", f.rest.ID).Update("owner_id", id).Error)
	}
	setOwner(f.staff.ID)

	res, err := f.orders.Complete(f.staff, o.ID)
	require.NoError(t, err)
	assert.False(t, res.OwnerCredited)
	assert.Equal(t, entity.OrderCompleted, res.Order.Status)
	assert.Equal(t, entity.OrderCompleted, f.reload(t, o.ID).Status)
	assert.Zero(t, f.entriesWithRef(t, OrderPayoutRef(o.ID)))

	// still broken: reconciliation skips it
	n, err := f.orders.ReconcilePayouts(10)
	require.NoError(t, err)
	assert.Zero(t, n)

	setOwner(f.owner.ID)
	n, err = f.orders.ReconcilePayouts(10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertMoney(t, 50000, f.balance(t, f.owner))

	n, err = f.orders.ReconcilePayouts(10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 1, f.entriesWithRef(t, OrderPayoutRef(o.ID)))
	assertMoney(t, 50000, f.balance(t, f.owner))
}

func TestCancelRefundsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.customer, 1)
	_, err := f.orders.Accept(f.owner, o.ID)
	require.NoError(t, err)

	reasons, err := f.orders.CancelReasons()
	require.NoError(t, err)
	require.NotEmpty(t, reasons)

	_, err = f.orders.Cancel(f.owner, o.ID, &CancelIn{ReasonID: ptr(uint(9999))})
	assert.ErrorIs(t, err, ErrCancelReasonNotFound)
	assert.Equal(t, entity.OrderAccepted, f.reload(t, o.ID).Status)

	cancelled, err := f.orders.Cancel(f.staff, o.ID, &CancelIn{ReasonID: &reasons[0].ID, Note: "out of beef"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCancelled, cancelled.Status)
	assertMoney(t, 50000, f.balance(t, f.customer))

	_, err = f.orders.Cancel(f.staff, o.ID, &CancelIn{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assertMoney(t, 50000, f.balance(t, f.customer))
	assert.EqualValues(t, 1, f.entriesWithRef(t, OrderRefundRef(o.ID)))

	entries, err := f.orders.WalletEntriesForCustomer(f.customer.ID, o.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.EntryOrderPayment, entries[0].Kind)
	assertMoney(t, -50000, entries[0].Amount)
	assert.Equal(t, entity.EntryRefund, entries[1].Kind)
	assertMoney(t, 50000, entries[1].Amount)

	_, err = f.orders.WalletEntriesForCustomer(f.other.ID, o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := f.orders.DetailForStaff(f.owner, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CancelReason)
	assert.Equal(t, reasons[0].Code, got.CancelReason.Code)
	assert.Equal(t, "out of beef", got.CancelNote)
	assert.NotNil(t, got.CancelledAt)
}

func TestReconcilePayouts(t *testing.T) {
	f := newFixture(t)
	o := f.paidOrder(t, f.customer, 1)
	// completed without going through Complete, as if the payout had failed
	require.NoError(t, f.db.Model(&entity.Order{}).Where("id = ?", o.ID).Update("status", entity.OrderCompleted).Error)

	n, err := f.orders.ReconcilePayouts(10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assertMoney(t, 50000, f.balance(t, f.owner))

	n, err = f.orders.ReconcilePayouts(10)
	require.NoError(t, err)
	assert.Zero(t, n)
	assertMoney(t, 50000, f.balance(t, f.owner))
}

func TestInvoiceForCustomer(t *testing.T) {
	f := newFixture(t)
	pending := f.placeOrder(t, f.customer, 1)
	_, err := f.orders.InvoiceForCustomer(f.customer.ID, pending.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	f.setBalance(t, f.customer, 50000)
	_, err = f.settlement.PayOrder(context.Background(), f.customer.ID, pending.ID, "")
	require.NoError(t, err)

	inv, err := f.orders.InvoiceForCustomer(f.customer.ID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, PayMethodWallet, inv.PaymentMethod)
	assertMoney(t, 50000, inv.Total)

	_, err = f.orders.InvoiceForCustomer(f.other.ID, pending.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
