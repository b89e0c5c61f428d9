package services

import (
	"testing"

	"github.com/konnn04/food-app-server/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddBindsRestaurantAndPrices(t *testing.T) {
	f := newFixture(t)

	v := f.addToCart(t, f.customer, f.pho, 2, ToppingIn{ToppingID: f.egg.ID})
	require.NotNil(t, v.RestaurantID)
	assert.Equal(t, f.rest.ID, *v.RestaurantID)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 2, v.Items[0].Quantity)
	require.Len(t, v.Items[0].Toppings, 1)
	assert.Equal(t, 1, v.Items[0].Toppings[0].Quantity)
	assertMoney(t, 105000, v.Subtotal)
}

func TestCartAddMergesSameToppingSet(t *testing.T) {
	f := newFixture(t)

	f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	v := f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})
	require.Len(t, v.Items, 1)
	assert.Equal(t, 2, v.Items[0].Quantity)
	assert.Equal(t, 2, v.Items[0].Toppings[0].Quantity)

	// a different topping set is a separate line
	v = f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.beef.ID})
	assert.Len(t, v.Items, 2)
	v = f.addToCart(t, f.customer, f.pho, 1)
	assert.Len(t, v.Items, 3)
}

func TestCartRejectsOtherRestaurant(t *testing.T) {
	f := newFixture(t)
	f.addToCart(t, f.customer, f.pho, 1)

	_, err := f.cart.Add(f.customer.ID, &AddToCartIn{FoodID: f.banhMi.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrCartRestaurantMismatch)

	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, f.pho.ID, v.Items[0].FoodID)
	assert.Equal(t, f.rest.ID, *v.RestaurantID)
}

func TestCartRemoveLastItemUnbinds(t *testing.T) {
	f := newFixture(t)
	v := f.addToCart(t, f.customer, f.pho, 1, ToppingIn{ToppingID: f.egg.ID})

	v, err := f.cart.RemoveItem(f.customer.ID, v.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.RestaurantID)

	var toppings int64
	require.NoError(t, f.db.Model(&entity.CartItemTopping{}).Count(&toppings).Error)
	assert.Zero(t, toppings)

	v = f.addToCart(t, f.customer, f.banhMi, 1)
	assert.Equal(t, f.otherRest.ID, *v.RestaurantID)
}

func TestCartForeignItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	mine := f.addToCart(t, f.customer, f.pho, 1)
	itemID := mine.Items[0].ID

	_, err := f.cart.UpdateQty(f.other.ID, itemID, 5)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	_, err = f.cart.RemoveItem(f.other.ID, itemID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 1, v.Items[0].Quantity)
}

func TestCartUpdateQty(t *testing.T) {
	f := newFixture(t)
	v := f.addToCart(t, f.customer, f.tra, 1)

	v, err := f.cart.UpdateQty(f.customer.ID, v.Items[0].ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v.Items[0].Quantity)
	assertMoney(t, 20000, v.Subtotal)

	_, err = f.cart.UpdateQty(f.customer.ID, v.Items[0].ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCartAddValidation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&entity.Food{}).Where("id = ?", f.tra.ID).Update("available", false).Error)
	require.NoError(t, f.db.Model(&entity.Topping{}).Where("id = ?", f.beef.ID).Update("is_available", false).Error)

	tests := []struct {
		name string
		in   AddToCartIn
		want error
	}{
		{"zero quantity", AddToCartIn{FoodID: f.pho.ID, Quantity: 0}, ErrInvalidInput},
		{"unknown food", AddToCartIn{FoodID: 9999, Quantity: 1}, ErrFoodNotFound},
		{"unavailable food", AddToCartIn{FoodID: f.tra.ID, Quantity: 1}, ErrFoodUnavailable},
		{"restaurant does not sell food", AddToCartIn{RestaurantID: &f.otherRest.ID, FoodID: f.pho.ID, Quantity: 1}, ErrInvalidInput},
		{"topping not linked", AddToCartIn{FoodID: f.banhMi.ID, Quantity: 1, Toppings: []ToppingIn{{ToppingID: f.egg.ID}}}, ErrToppingInvalid},
		{"topping unavailable", AddToCartIn{FoodID: f.pho.ID, Quantity: 1, Toppings: []ToppingIn{{ToppingID: f.beef.ID}}}, ErrToppingInvalid},
		{"topping twice", AddToCartIn{FoodID: f.pho.ID, Quantity: 1, Toppings: []ToppingIn{{ToppingID: f.egg.ID}, {ToppingID: f.egg.ID}}}, ErrInvalidInput},
		{"negative topping quantity", AddToCartIn{FoodID: f.pho.ID, Quantity: 1, Toppings: []ToppingIn{{ToppingID: f.egg.ID, Quantity: -1}}}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := f.cart.Add(f.customer.ID, &in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.RestaurantID)
}

func TestCartClearAndPreviewCoupon(t *testing.T) {
	f := newFixture(t)
	couponRepo := f.cart.CouponRepo
	require.NoError(t, couponRepo.Create(&entity.Coupon{
		Code: "welcome10", DiscountType: entity.DiscountPercent, DiscountValue: d(10), IsActive: true,
	}))

	_, err := f.cart.PreviewCoupon(f.customer.ID, "WELCOME10")
	assert.ErrorIs(t, err, ErrCartEmpty)

	f.addToCart(t, f.customer, f.pho, 2)
	q, err := f.cart.PreviewCoupon(f.customer.ID, " welcome10 ")
	require.NoError(t, err)
	assertMoney(t, 100000, q.Subtotal)
	assertMoney(t, 10000, q.Discount)
	assertMoney(t, 90000, q.Payable)

	_, err = f.cart.PreviewCoupon(f.customer.ID, "NOPE")
	assert.ErrorIs(t, err, ErrCouponNotFound)

	require.NoError(t, f.cart.Clear(f.customer.ID))
	v, err := f.cart.Get(f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.Nil(t, v.RestaurantID)
}
