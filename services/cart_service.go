package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService struct {
	DB         *gorm.DB
	CartRepo   *repository.CartRepository
	FoodRepo   *repository.FoodRepository
	CouponRepo *repository.CouponRepository
	Now        func() time.Time
}

func NewCartService(db *gorm.DB, cr *repository.CartRepository, fr *repository.FoodRepository, cp *repository.CouponRepository) *CartService {
	return &CartService{DB: db, CartRepo: cr, FoodRepo: fr, CouponRepo: cp, Now: time.Now}
}

type ToppingIn struct {
	ToppingID uint `json:"toppingId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type AddToCartIn struct {
	// Optional; when set it must be the food's restaurant.
	RestaurantID *uint       `json:"restaurantId"`
	FoodID       uint        `json:"foodId" binding:"required"`
	Quantity     int         `json:"quantity" binding:"required,min=1"`
	Toppings     []ToppingIn `json:"toppings"`
}

type CartView struct {
	ID           uint              `json:"id"`
	RestaurantID *uint             `json:"restaurantId"`
	Items        []entity.CartItem `json:"items"`
	Subtotal     decimal.Decimal   `json:"subtotal"`
}

func newCartView(c *entity.Cart) *CartView {
	items := c.Items
	if items == nil {
		items = []entity.CartItem{}
	}
	subtotal := decimal.Zero
	for _, l := range cartLines(items) {
		subtotal = subtotal.Add(l.Total())
	}
	return &CartView{ID: c.ID, RestaurantID: c.RestaurantID, Items: items, Subtotal: subtotal}
}

func cartLines(items []entity.CartItem) []PricedLine {
	lines := make([]PricedLine, 0, len(items))
	for _, it := range items {
		l := PricedLine{FoodID: it.FoodID, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		for _, t := range it.Toppings {
			l.Toppings = append(l.Toppings, PricedTopping{ToppingID: t.ToppingID, Quantity: t.Quantity, Price: t.Price})
		}
		lines = append(lines, l)
	}
	return lines
}

func (s *CartService) Get(customerID uint) (*CartView, error) {
	c, err := s.CartRepo.GetCartWithItems(s.DB, customerID)
	if err != nil {
		return nil, err
	}
	return newCartView(c), nil
}

func (s *CartService) Add(customerID uint, in *AddToCartIn) (*CartView, error) {
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	var out *entity.Cart
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		food, err := s.FoodRepo.GetFood(tx, in.FoodID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: id %d", ErrFoodNotFound, in.FoodID)
		}
		if err != nil {
			return err
		}
		if !food.Available {
			return fmt.Errorf("%w: %s", ErrFoodUnavailable, food.Name)
		}
		if in.RestaurantID != nil && *in.RestaurantID != food.RestaurantID {
			return fmt.Errorf("%w: food %d is not sold by restaurant %d", ErrInvalidInput, food.ID, *in.RestaurantID)
		}

		toppings, err := selectToppings(food, in.Toppings)
		if err != nil {
			return err
		}

		cart, err := s.CartRepo.GetOrCreate(tx, customerID)
		if err != nil {
			return err
		}
		if err := s.bindRestaurant(tx, cart, food.RestaurantID); err != nil {
			return err
		}

		if err := s.addOrMerge(tx, cart.ID, food, in.Quantity, toppings); err != nil {
			return err
		}

		out, err = s.CartRepo.GetCartWithItems(tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newCartView(out), nil
}

// bindRestaurant is a no-op for the same restaurant, rebinds an empty cart,
// and rejects a non-empty cart bound elsewhere.
func (s *CartService) bindRestaurant(tx *gorm.DB, cart *entity.Cart, restaurantID uint) error {
	if cart.BoundTo(restaurantID) {
		return nil
	}
	if cart.RestaurantID != nil && !cart.IsEmpty() {
		return fmt.Errorf("%w: cart is bound to restaurant %d", ErrCartRestaurantMismatch, *cart.RestaurantID)
	}
	cart.RestaurantID = &restaurantID
	return s.CartRepo.BindRestaurant(tx, cart.ID, &restaurantID)
}

func selectToppings(food *entity.Food, in []ToppingIn) ([]entity.CartItemTopping, error) {
	linked := make(map[uint]entity.Topping, len(food.Toppings))
	for _, t := range food.Toppings {
		linked[t.ID] = t
	}
	seen := make(map[uint]bool, len(in))
	out := make([]entity.CartItemTopping, 0, len(in))
	for _, sel := range in {
		t, ok := linked[sel.ToppingID]
		if !ok || !t.IsAvailable {
			return nil, fmt.Errorf("%w: topping %d", ErrToppingInvalid, sel.ToppingID)
		}
		if seen[sel.ToppingID] {
			return nil, fmt.Errorf("%w: topping %d selected twice", ErrInvalidInput, sel.ToppingID)
		}
		seen[sel.ToppingID] = true

		qty := sel.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 {
			return nil, fmt.Errorf("%w: topping quantity must be at least 1", ErrInvalidInput)
		}
		out = append(out, entity.CartItemTopping{ToppingID: t.ID, Quantity: qty, Price: t.Price})
	}
	return out, nil
}

// addOrMerge sums into an existing line with the same food, topping set and
// captured prices, otherwise creates a new line with prices captured now.
func (s *CartService) addOrMerge(tx *gorm.DB, cartID uint, food *entity.Food, qty int, toppings []entity.CartItemTopping) error {
	existing, err := s.CartRepo.ItemsForFood(tx, cartID, food.ID)
	if err != nil {
		return err
	}
	for _, it := range existing {
		if !it.UnitPrice.Equal(food.Price) || !sameToppings(it.Toppings, toppings) {
			continue
		}
		if err := s.CartRepo.IncrementQty(tx, it.ID, qty); err != nil {
			return err
		}
		for _, cur := range it.Toppings {
			for _, add := range toppings {
				if cur.ToppingID != add.ToppingID {
					continue
				}
				if err := tx.Model(&entity.CartItemTopping{}).Where("id = ?", cur.ID).
					Update("quantity", gorm.Expr("quantity + ?", add.Quantity)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	}

	return s.CartRepo.CreateItem(tx, &entity.CartItem{
		CartID:    cartID,
		FoodID:    food.ID,
		Quantity:  qty,
		UnitPrice: food.Price,
		Toppings:  toppings,
	})
}

func sameToppings(a, b []entity.CartItemTopping) bool {
	if len(a) != len(b) {
		return false
	}
	prices := make(map[uint]decimal.Decimal, len(a))
	for _, t := range a {
		prices[t.ToppingID] = t.Price
	}
	for _, t := range b {
		p, ok := prices[t.ToppingID]
		if !ok || !p.Equal(t.Price) {
			return false
		}
	}
	return true
}

func (s *CartService) UpdateQty(customerID, itemID uint, qty int) (*CartView, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	var out *entity.Cart
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		n, err := s.CartRepo.UpdateQty(tx, customerID, itemID, qty)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCartItemNotFound
		}
		out, err = s.CartRepo.GetCartWithItems(tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newCartView(out), nil
}

func (s *CartService) RemoveItem(customerID, itemID uint) (*CartView, error) {
	var out *entity.Cart
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		n, err := s.CartRepo.RemoveItem(tx, customerID, itemID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCartItemNotFound
		}
		out, err = s.CartRepo.GetCartWithItems(tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newCartView(out), nil
}

func (s *CartService) Clear(customerID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.CartRepo.ClearCart(tx, customerID)
	})
}

// PreviewCoupon prices the current cart with code without placing an order.
func (s *CartService) PreviewCoupon(customerID uint, code string) (*Quote, error) {
	cart, err := s.CartRepo.GetCartWithItems(s.DB, customerID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() || cart.RestaurantID == nil {
		return nil, ErrCartEmpty
	}
	coupon, err := s.CouponRepo.FindByCode(s.DB, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCouponNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	q, err := Price(cartLines(cart.Items), coupon, *cart.RestaurantID, s.Now())
	if err != nil {
		return nil, err
	}
	return &q, nil
}
