package repository

import (
	"errors"

	"github.com/konnn04/food-app-server/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Every item mutation is scoped through this subquery so a foreign item id
// matches nothing.
const ownCartScope = "cart_id IN (SELECT id FROM carts WHERE customer_id = ?)"

type CartRepository struct{ DB *gorm.DB }

func NewCartRepository(db *gorm.DB) *CartRepository { return &CartRepository{DB: db} }

func preloadCart(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Food").
		Preload("Items.Toppings").
		Preload("Items.Toppings.Topping")
}

// GetCartWithItems returns the customer's cart, or an empty unsaved cart when none exists yet.
func (r *CartRepository) GetCartWithItems(tx *gorm.DB, customerID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := preloadCart(tx).Where("customer_id = ?", customerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &entity.Cart{CustomerID: customerID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate returns the customer's cart, creating it on first use. The cart row is locked for the rest of tx.
func (r *CartRepository) GetOrCreate(tx *gorm.DB, customerID uint) (*entity.Cart, error) {
	var c entity.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("customer_id = ?", customerID).First(&c).Error
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = entity.Cart{CustomerID: customerID}
	if err := tx.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// BindRestaurant sets or clears (nil) the cart's restaurant.
func (r *CartRepository) BindRestaurant(tx *gorm.DB, cartID uint, restaurantID *uint) error {
	return tx.Model(&entity.Cart{}).Where("id = ?", cartID).Update("restaurant_id", restaurantID).Error
}

// ItemsForFood returns the cart lines for one food, with their toppings.
func (r *CartRepository) ItemsForFood(tx *gorm.DB, cartID, foodID uint) ([]entity.CartItem, error) {
	var items []entity.CartItem
	err := tx.Preload("Toppings").
		Where("cart_id = ? AND food_id = ?", cartID, foodID).
		Order("id").Find(&items).Error
	return items, err
}

func (r *CartRepository) CreateItem(tx *gorm.DB, item *entity.CartItem) error {
	return tx.Create(item).Error
}

func (r *CartRepository) IncrementQty(tx *gorm.DB, itemID uint, delta int) error {
	return tx.Model(&entity.CartItem{}).Where("id = ?", itemID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// UpdateQty reports how many rows matched; zero means the item is not in this customer's cart.
func (r *CartRepository) UpdateQty(tx *gorm.DB, customerID, itemID uint, qty int) (int64, error) {
	res := tx.Model(&entity.CartItem{}).
		Where("id = ? AND "+ownCartScope, itemID, customerID).
		Update("quantity", qty)
	return res.RowsAffected, res.Error
}

func (r *CartRepository) RemoveItem(tx *gorm.DB, customerID, itemID uint) (int64, error) {
	if err := tx.Unscoped().
		Where("cart_item_id IN (SELECT id FROM cart_items WHERE id = ? AND "+ownCartScope+")", itemID, customerID).
		Delete(&entity.CartItemTopping{}).Error; err != nil {
		return 0, err
	}
	res := tx.Unscoped().
		Where("id = ? AND "+ownCartScope, itemID, customerID).
		Delete(&entity.CartItem{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	// empty again: free the cart for any restaurant
	err := tx.Exec(`
		UPDATE carts SET restaurant_id = NULL
		 WHERE customer_id = ?
		   AND NOT EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = carts.id)
	`, customerID).Error
	return res.RowsAffected, err
}

func (r *CartRepository) ClearCart(tx *gorm.DB, customerID uint) error {
	if err := tx.Unscoped().
		Where("cart_item_id IN (SELECT id FROM cart_items WHERE "+ownCartScope+")", customerID).
		Delete(&entity.CartItemTopping{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where(ownCartScope, customerID).Delete(&entity.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Model(&entity.Cart{}).Where("customer_id = ?", customerID).Update("restaurant_id", nil).Error
}
