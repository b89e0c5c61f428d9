package routes

import (
	"github.com/konnn04/food-app-server/configs"
	"github.com/konnn04/food-app-server/pkg/idempotency"
	"github.com/konnn04/food-app-server/pkg/vnpay"
	"github.com/konnn04/food-app-server/repository"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/ws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the wired object graph shared by the router and background workers.
type App struct {
	Config *configs.Config
	Log    *zap.Logger
	Store  idempotency.Store

	Principals *repository.PrincipalRepository

	Cart       *services.CartService
	Orders     *services.OrderService
	Wallet     *services.WalletService
	Settlement *services.SettlementService
	Sweeper    *services.Sweeper
	Hub        *ws.OrderHub
}

func NewApp(db *gorm.DB, cfg *configs.Config, log *zap.Logger, store idempotency.Store) *App {
	if store == nil {
		store = idempotency.NewMemoryStore()
	}

	principalRepo := repository.NewPrincipalRepository(db)
	restRepo := repository.NewRestaurantRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	cartRepo := repository.NewCartRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	wallet := services.NewWalletService(db, walletRepo, principalRepo)
	cart := services.NewCartService(db, cartRepo, foodRepo, couponRepo)
	orders := services.NewOrderService(db, orderRepo, cartRepo, foodRepo, couponRepo, restRepo, paymentRepo, wallet, log)

	gateway := vnpay.NewClient(cfg.VNPayTmnCode, cfg.VNPayHashSecret, cfg.VNPayPaymentURL, cfg.VNPayReturnURL)
	settlement := services.NewSettlementService(db, orders, paymentRepo, principalRepo, wallet, gateway, log)

	hub := ws.NewOrderHub(restRepo, log)
	orders.Notifier = hub

	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Principals: principalRepo,
		Cart:       cart,
		Orders:     orders,
		Wallet:     wallet,
		Settlement: settlement,
		Sweeper:    services.NewSweeper(settlement, orders, cfg.SweepInterval, cfg.PendingTxnTTL, log),
		Hub:        hub,
	}
}
