package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/konnn04/food-app-server/configs"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/vnpay"
	"github.com/konnn04/food-app-server/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (n *recordingNotifier) OrderChanged(ev OrderEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) statuses(orderID uint) []entity.OrderStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []entity.OrderStatus
	for _, ev := range n.events {
		if ev.OrderID == orderID {
			out = append(out, ev.Status)
		}
	}
	return out
}

type fixture struct {
	db  *gorm.DB
	gw  *vnpay.Client
	log *zap.Logger

	principals *repository.PrincipalRepository
	wallet     *WalletService
	cart       *CartService
	orders     *OrderService
	settlement *SettlementService
	notes      *recordingNotifier

	customer *entity.Principal
	other    *entity.Principal // a second customer
	owner    *entity.Principal
	staff    *entity.Principal
	stranger *entity.Principal // owner of another restaurant

	rest      *entity.Restaurant
	otherRest *entity.Restaurant

	pho, tra, banhMi *entity.Food // banhMi is sold by otherRest
	egg, beef        *entity.Topping
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertMoney(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(d(want)), "want %d, got %s", want, got.String())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", ""))
	db, err := configs.ConnectionDB(dsn)
	require.NoError(t, err)
	require.NoError(t, configs.SetupDatabase(db))
	require.NoError(t, configs.SeedLookups(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db, log: zap.NewNop(), notes: &recordingNotifier{}}

	f.principals = repository.NewPrincipalRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	cartRepo := repository.NewCartRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	restRepo := repository.NewRestaurantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	f.wallet = NewWalletService(db, walletRepo, f.principals)
	f.cart = NewCartService(db, cartRepo, foodRepo, couponRepo)
	f.orders = NewOrderService(db, orderRepo, cartRepo, foodRepo, couponRepo, restRepo, paymentRepo, f.wallet, f.log)
	f.orders.Notifier = f.notes
	f.gw = vnpay.NewClient("TESTTMN", "test-secret", "https://sandbox.example/pay", "http://localhost/payments/vnpay/return")
	f.settlement = NewSettlementService(db, f.orders, paymentRepo, f.principals, f.wallet, f.gw, f.log)

	f.customer = f.mkPrincipal(t, entity.KindCustomer, "customer", nil, 0)
	f.other = f.mkPrincipal(t, entity.KindCustomer, "other", nil, 0)
	f.owner = f.mkPrincipal(t, entity.KindOwner, "owner", nil, 0)
	f.stranger = f.mkPrincipal(t, entity.KindOwner, "stranger", nil, 0)

	f.rest = &entity.Restaurant{Name: "Pho 24", IsActive: true, OwnerID: f.owner.ID}
	require.NoError(t, db.Create(f.rest).Error)
	f.otherRest = &entity.Restaurant{Name: "Banh Mi Hoi An", IsActive: true, OwnerID: f.stranger.ID}
	require.NoError(t, db.Create(f.otherRest).Error)
	f.staff = f.mkPrincipal(t, entity.KindStaff, "staff", &f.rest.ID, 0)

	f.egg = &entity.Topping{Name: "Egg", Price: d(5000), IsAvailable: true}
	f.beef = &entity.Topping{Name: "Extra beef", Price: d(15000), IsAvailable: true}
	require.NoError(t, db.Create(f.egg).Error)
	require.NoError(t, db.Create(f.beef).Error)

	f.pho = &entity.Food{Name: "Pho bo", Price: d(50000), Available: true, RestaurantID: f.rest.ID,
		Toppings: []entity.Topping{*f.egg, *f.beef}}
	f.tra = &entity.Food{Name: "Tra da", Price: d(5000), Available: true, RestaurantID: f.rest.ID}
	f.banhMi = &entity.Food{Name: "Banh mi", Price: d(25000), Available: true, RestaurantID: f.otherRest.ID}
	for _, food := range []*entity.Food{f.pho, f.tra, f.banhMi} {
		require.NoError(t, db.Create(food).Error)
	}
	return f
}

func (f *fixture) mkPrincipal(t *testing.T, kind entity.PrincipalKind, name string, restID *uint, balance int64) *entity.Principal {
	t.Helper()
	p := &entity.Principal{
		Kind:         kind,
		FirstName:    name,
		Email:        name + "@test.local",
		Balance:      d(balance),
		RestaurantID: restID,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) setBalance(t *testing.T, p *entity.Principal, v int64) {
	t.Helper()
	require.NoError(t, f.db.Model(&entity.Principal{}).Where("id = ?", p.ID).Update("balance", d(v)).Error)
}

func (f *fixture) balance(t *testing.T, p *entity.Principal) decimal.Decimal {
	t.Helper()
	got, err := f.principals.FindByID(p.ID)
	require.NoError(t, err)
	return got.Balance
}

func (f *fixture) reload(t *testing.T, orderID uint) *entity.Order {
	t.Helper()
	var o entity.Order
	require.NoError(t, f.db.First(&o, orderID).Error)
	return &o
}

func (f *fixture) entriesWithRef(t *testing.T, ref string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.WalletEntry{}).Where("reference = ?", ref).Count(&n).Error)
	return n
}

func (f *fixture) addToCart(t *testing.T, customer *entity.Principal, food *entity.Food, qty int, toppings ...ToppingIn) *CartView {
	t.Helper()
	v, err := f.cart.Add(customer.ID, &AddToCartIn{FoodID: food.ID, Quantity: qty, Toppings: toppings})
	require.NoError(t, err)
	return v
}

// placeOrder checks out a fresh cart of qty×pho.
func (f *fixture) placeOrder(t *testing.T, customer *entity.Principal, qty int) *entity.Order {
	t.Helper()
	f.addToCart(t, customer, f.pho, qty)
	o, err := f.orders.CreateFromCart(customer.ID, &CheckoutIn{Address: "1 Le Loi", Phone: "0900000000"})
	require.NoError(t, err)
	return o
}

// paidOrder places an order and pays it from a wallet topped up to cover it exactly.
func (f *fixture) paidOrder(t *testing.T, customer *entity.Principal, qty int) *entity.Order {
	t.Helper()
	o := f.placeOrder(t, customer, qty)
	f.setBalance(t, customer, o.TotalAmount.IntPart())
	res, err := f.settlement.PayOrder(context.Background(), customer.ID, o.ID, "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, PayMethodWallet, res.Method)
	return res.Order
}

func (f *fixture) callback(ref string, amountMinor int64, code string) url.Values {
	return f.gw.Sign(url.Values{
		"vnp_TxnRef":        {ref},
		"vnp_Amount":        {fmt.Sprintf("%d", amountMinor)},
		"vnp_ResponseCode":  {code},
		"vnp_TransactionNo": {"14000001"},
		"vnp_BankCode":      {"NCB"},
		"vnp_TmnCode":       {f.gw.TmnCode},
	})
}

func (f *fixture) advanceClock(by time.Duration) {
	now := time.Now().Add(by)
	f.settlement.Now = func() time.Time { return now }
}
