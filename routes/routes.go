package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/controllers"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/middlewares"
)

func RegisterRoutes(r *gin.Engine, app *App) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	secret := app.Config.JWTSecret
	auth := func(kinds ...entity.PrincipalKind) gin.HandlerFunc {
		return middlewares.AuthMiddleware(secret, app.Principals, kinds...)
	}
	idem := middlewares.Idempotency(app.Store, app.Config.IdempotencyTTL, app.Log)

	// Controllers
	cartCtrl := controllers.NewCartController(app.Cart)
	couponCtrl := controllers.NewCouponController(app.Cart)
	orderCtrl := controllers.NewOrderController(app.Orders)
	staffCtrl := controllers.NewOwnerOrderController(app.Orders)
	walletCtrl := controllers.NewWalletController(app.Wallet, app.Settlement)
	payCtrl := controllers.NewPaymentController(app.Settlement)

	// Customer
	cu := r.Group("/", auth(entity.KindCustomer))
	{
		cu.GET("/cart", cartCtrl.Get)
		cu.POST("/cart/items", cartCtrl.Add)
		cu.PATCH("/cart/items/:itemId", cartCtrl.UpdateQty)
		cu.DELETE("/cart/items/:itemId", cartCtrl.RemoveItem)
		cu.DELETE("/cart", cartCtrl.Clear)

		cu.POST("/coupons/apply", couponCtrl.Apply)

		cu.POST("/orders/checkout", idem, orderCtrl.Checkout)
		cu.GET("/orders", orderCtrl.ListForMe)
		cu.GET("/orders/:id", orderCtrl.Detail)
		cu.GET("/orders/:id/invoice", orderCtrl.Invoice)
		cu.GET("/orders/:id/wallet-entries", orderCtrl.WalletEntries)

		cu.POST("/payments/orders/:id/pay", idem, payCtrl.PayOrder)
	}

	// Wallet holders (customers, owners)
	w := r.Group("/", auth(), middlewares.RequireWallet())
	{
		w.GET("/wallet", walletCtrl.Balance)
		w.GET("/wallet/entries", walletCtrl.Entries)
		w.GET("/wallet/transactions", walletCtrl.Transactions)
		w.POST("/payments/deposits", idem, payCtrl.Deposit)
	}

	// Restaurant owners and staff
	staff := r.Group("/", auth(entity.KindOwner, entity.KindStaff))
	{
		staff.GET("/staff/restaurants/:id/orders", staffCtrl.List)
		staff.GET("/staff/orders/:orderId", staffCtrl.Detail)
		staff.PATCH("/staff/orders/:orderId/accept", staffCtrl.Accept)
		staff.PATCH("/staff/orders/:orderId/done", staffCtrl.Done)
		staff.PATCH("/staff/orders/:orderId/complete", staffCtrl.Complete)
		staff.PATCH("/staff/orders/:orderId/cancel", staffCtrl.Cancel)
		staff.GET("/cancel-reasons", staffCtrl.CancelReasons)
	}

	// Payment provider callbacks (signed, no bearer token)
	r.GET("/payments/vnpay/return", payCtrl.VNPayReturn)
	r.GET("/payments/vnpay/ipn", payCtrl.VNPayIPN)
	r.POST("/payments/vnpay/ipn", payCtrl.VNPayIPN)

	// Order status stream
	r.GET("/ws/orders", middlewares.WSAuthMiddleware(secret, app.Principals), app.Hub.HandleWebSocket)
}
