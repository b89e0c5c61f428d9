package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderEvent is published after an order's status change commits.
type OrderEvent struct {
	OrderID      uint               `json:"orderId"`
	CustomerID   uint               `json:"customerId"`
	RestaurantID uint               `json:"restaurantId"`
	Status       entity.OrderStatus `json:"status"`
	At           time.Time          `json:"at"`
}

type OrderNotifier interface {
	OrderChanged(ev OrderEvent)
}

type OrderService struct {
	DB          *gorm.DB
	Repo        *repository.OrderRepository
	CartRepo    *repository.CartRepository
	FoodRepo    *repository.FoodRepository
	CouponRepo  *repository.CouponRepository
	RestRepo    *repository.RestaurantRepository
	PaymentRepo *repository.PaymentRepository
	Wallet      *WalletService
	Notifier    OrderNotifier
	Log         *zap.Logger
	Now         func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	foodRepo *repository.FoodRepository,
	couponRepo *repository.CouponRepository,
	restRepo *repository.RestaurantRepository,
	paymentRepo *repository.PaymentRepository,
	wallet *WalletService,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		DB: db, Repo: repo, CartRepo: cartRepo, FoodRepo: foodRepo, CouponRepo: couponRepo,
		RestRepo: restRepo, PaymentRepo: paymentRepo, Wallet: wallet, Log: log, Now: time.Now,
	}
}

func (s *OrderService) notify(o *entity.Order) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.OrderChanged(OrderEvent{
		OrderID: o.ID, CustomerID: o.CustomerID, RestaurantID: o.RestaurantID, Status: o.Status, At: s.Now(),
	})
}

type CheckoutIn struct {
	Address    string `json:"address" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Note       string `json:"note"`
	CouponCode string `json:"couponCode"`
}

// CreateFromCart turns the customer's cart into a pending order and clears the
// cart. Nothing is written unless every step succeeds.
func (s *OrderService) CreateFromCart(customerID uint, in *CheckoutIn) (*entity.Order, error) {
	var order *entity.Order
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		cart, err := s.CartRepo.GetCartWithItems(tx, customerID)
		if err != nil {
			return err
		}
		if cart.IsEmpty() || cart.RestaurantID == nil {
			return ErrCartEmpty
		}
		restID := *cart.RestaurantID

		foodIDs := make([]uint, 0, len(cart.Items))
		for _, it := range cart.Items {
			foodIDs = append(foodIDs, it.FoodID)
		}
		foods, err := s.FoodRepo.FoodsByIDs(tx, foodIDs)
		if err != nil {
			return err
		}

		items := make([]entity.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			f, ok := foods[it.FoodID]
			switch {
			case !ok:
				return fmt.Errorf("%w: food %d no longer exists", ErrCartInconsistent, it.FoodID)
			case !f.Available:
				return fmt.Errorf("%w: %s is unavailable", ErrCartInconsistent, f.Name)
			case f.RestaurantID != restID:
				return fmt.Errorf("%w: %s moved to another restaurant", ErrCartInconsistent, f.Name)
			}

			line := cartLines([]entity.CartItem{it})[0]
			oi := entity.OrderItem{
				FoodID:    it.FoodID,
				FoodName:  f.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
				Total:     line.Total(),
			}
			for _, t := range it.Toppings {
				if t.Topping.ID == 0 || !t.Topping.IsAvailable {
					return fmt.Errorf("%w: topping %d is unavailable", ErrCartInconsistent, t.ToppingID)
				}
				oi.Toppings = append(oi.Toppings, entity.OrderItemTopping{
					ToppingID:   t.ToppingID,
					ToppingName: t.Topping.Name,
					Quantity:    t.Quantity,
					Price:       t.Price,
				})
			}
			items = append(items, oi)
		}

		var coupon *entity.Coupon
		if in.CouponCode != "" {
			coupon, err = s.CouponRepo.FindByCode(tx, in.CouponCode)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrCouponNotFound, in.CouponCode)
			}
			if err != nil {
				return err
			}
		}

		quote, err := Price(cartLines(cart.Items), coupon, restID, s.Now())
		if err != nil {
			return err
		}

		order = &entity.Order{
			CustomerID:      customerID,
			RestaurantID:    restID,
			Subtotal:        quote.Subtotal,
			Discount:        quote.Discount,
			TotalAmount:     quote.Payable,
			Status:          entity.OrderPending,
			DeliveryAddress: in.Address,
			DeliveryPhone:   in.Phone,
			DeliveryNote:    in.Note,
			Items:           items,
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
			order.CouponCode = coupon.Code
		}
		if err := s.Repo.CreateOrder(tx, order); err != nil {
			return err
		}
		return s.CartRepo.ClearCart(tx, customerID)
	})
	if err != nil {
		return nil, err
	}
	s.Log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("customer_id", customerID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	s.notify(order)
	return order, nil
}

func (s *OrderService) ListForCustomer(customerID uint, limit int) ([]repository.OrderSummary, error) {
	return s.Repo.ListOrdersForCustomer(customerID, limit)
}

func (s *OrderService) DetailForCustomer(customerID, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.GetOrderDetail(s.DB, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ownOrder loads the bare order and hides it from anyone but its customer.
func (s *OrderService) ownOrder(customerID, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.GetOrder(s.DB, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && o.CustomerID != customerID) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) InvoiceForCustomer(customerID, orderID uint) (*entity.Invoice, error) {
	if _, err := s.ownOrder(customerID, orderID); err != nil {
		return nil, err
	}
	inv, err := s.PaymentRepo.GetInvoiceByOrder(orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	return inv, err
}

// WalletEntriesForCustomer lists the payment and refund the order moved on the customer's wallet.
func (s *OrderService) WalletEntriesForCustomer(customerID, orderID uint) ([]entity.WalletEntry, error) {
	if _, err := s.ownOrder(customerID, orderID); err != nil {
		return nil, err
	}
	return s.Wallet.OrderEntries(customerID, orderID)
}

type RestaurantOrderList struct {
	Items []repository.RestaurantOrderSummary `json:"items"`
	Total int64                               `json:"total"`
	Page  int                                 `json:"page"`
	Limit int                                 `json:"limit"`
}

func (s *OrderService) ListForRestaurant(actor *entity.Principal, restID uint, status *entity.OrderStatus, page, limit int) (*RestaurantOrderList, error) {
	rest, err := s.RestRepo.FindByID(s.DB, restID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanOperate(rest) {
		return nil, ErrForbidden
	}
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
	}

	items, total, err := s.Repo.ListOrdersForRestaurant(restID, status, page, limit)
	if err != nil {
		return nil, err
	}
	return &RestaurantOrderList{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *OrderService) DetailForStaff(actor *entity.Principal, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.GetOrderDetail(s.DB, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	rest, err := s.RestRepo.FindByID(s.DB, o.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !actor.CanOperate(rest) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *OrderService) CancelReasons() ([]entity.CancelReason, error) {
	return s.Repo.ListCancelReasons()
}
