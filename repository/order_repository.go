package repository

import (
	"strings"
	"time"

	"github.com/konnn04/food-app-server/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// CreateOrder inserts the order together with its items and item toppings.
func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) GetOrder(tx *gorm.DB, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := tx.First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetOrderForUpdate(tx *gorm.DB, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetOrderDetail(tx *gorm.DB, orderID uint) (*entity.Order, error) {
	var o entity.Order
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Toppings").
		Preload("CancelReason").
		First(&o, orderID).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

type OrderSummary struct {
	ID           uint               `json:"id"`
	RestaurantID uint               `json:"restaurantId"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	Status       entity.OrderStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func (r *OrderRepository) ListOrdersForCustomer(customerID uint, limit int) ([]OrderSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []OrderSummary
	err := r.DB.Model(&entity.Order{}).
		Select("id, restaurant_id, total_amount, status, created_at").
		Where("customer_id = ?", customerID).
		Order("id DESC").Limit(limit).
		Scan(&out).Error
	return out, err
}

type RestaurantOrderSummary struct {
	ID           uint               `json:"id"`
	CustomerID   uint               `json:"customerId"`
	CustomerName string             `json:"customerName"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	Status       entity.OrderStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func (r *OrderRepository) ListOrdersForRestaurant(restID uint, status *entity.OrderStatus, page, limit int) ([]RestaurantOrderSummary, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	dbCount := r.DB.Model(&entity.Order{}).Where("restaurant_id = ?", restID)
	if status != nil {
		dbCount = dbCount.Where("status = ?", *status)
	}
	if err := dbCount.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []struct {
		ID          uint
		CustomerID  uint
		TotalAmount decimal.Decimal
		Status      entity.OrderStatus
		CreatedAt   time.Time
		FirstName   string
		LastName    string
	}
	db := r.DB.Table("orders AS o").
		Select("o.id, o.customer_id, o.total_amount, o.status, o.created_at, p.first_name, p.last_name").
		Joins("JOIN principals p ON p.id = o.customer_id").
		Where("o.restaurant_id = ? AND o.deleted_at IS NULL", restID)
	if status != nil {
		db = db.Where("o.status = ?", *status)
	}
	if err := db.Order("o.id DESC").Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]RestaurantOrderSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, RestaurantOrderSummary{
			ID:           row.ID,
			CustomerID:   row.CustomerID,
			CustomerName: strings.TrimSpace(row.FirstName + " " + row.LastName),
			TotalAmount:  row.TotalAmount,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, total, nil
}

// UpdateStatusGuard moves an order from one status to another. Zero rows
// affected means the order was no longer in `from`.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus, extra map[string]any) (int64, error) {
	updates := map[string]any{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// CompletedWithoutPayout lists completed orders whose owner payout entry is missing.
func (r *OrderRepository) CompletedWithoutPayout(limit int) ([]entity.Order, error) {
	var out []entity.Order
	err := r.DB.
		Where("status = ? AND total_amount > 0", entity.OrderCompleted).
		Where("NOT EXISTS (SELECT 1 FROM wallet_entries w WHERE w.reference = 'order:' || orders.id || ':payout')").
		Order("id").Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *OrderRepository) ListCancelReasons() ([]entity.CancelReason, error) {
	var out []entity.CancelReason
	err := r.DB.Order("id").Find(&out).Error
	return out, err
}

func (r *OrderRepository) GetCancelReason(tx *gorm.DB, id uint) (*entity.CancelReason, error) {
	var cr entity.CancelReason
	if err := tx.First(&cr, id).Error; err != nil {
		return nil, err
	}
	return &cr, nil
}
